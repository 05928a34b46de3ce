// Package errors provides structured, actionable error messages for memolab.
//
// Every error the CLI or the HTTP API reports carries a code that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A hint on how to fix it
//
// # Error Categories
//
//   - scope: an accessor ran outside its provider, or the store was closed
//   - not_found: unknown page
//   - validation: unknown action or malformed argument
//   - config: configuration file errors
//   - cli: command line errors
//
// # Usage
//
//	err := errors.New("E122").
//	    WithDetail("server.port must be between 0 and 65535").
//	    WithLocation("memolab.yaml", 3, 9)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E122: Invalid config value
//	//
//	//   memolab.yaml:3:9
//	//
//	//     1 │ server:
//	//     2 │   host: localhost
//	//   → 3 │   port: 70000
//	//       │         ^
//	//
//	//   server.port must be between 0 and 65535
//
// Errors returned by the lab are mapped to codes with Classify.
package errors
