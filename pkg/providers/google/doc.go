// Package google implements the Google adapter for the Generative Language
// API (Gemini). System messages become systemInstruction, assistant turns
// map to the "model" role, generation parameters are renamed into
// generationConfig, and SAFETY/RECITATION finish reasons normalize to
// content_filter.
package google
