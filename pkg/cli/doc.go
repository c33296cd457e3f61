// Package cli holds the shared helpers behind the webrana command:
// output formatting, typed command errors, and signal handling for
// graceful shutdown.
//
// Output formatting:
//
//	formatter := cli.NewFormatter(cli.FormatJSON)
//	if err := formatter.FormatTo(os.Stdout, records); err != nil {
//		return err
//	}
//
// Signal handling:
//
//	ctx := cli.SetupSignalHandler()
//	// ctx is cancelled on SIGINT or SIGTERM
package cli
