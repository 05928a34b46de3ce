// Package config provides configuration parsing for memolab.
//
// The configuration is stored in memolab.json or memolab.yaml in the
// working directory, or in a file passed with --config. Every field is
// optional; missing values take their defaults.
//
// # Configuration File Structure
//
//	server:
//	  host: localhost
//	  port: 7070
//	  allowedOrigins: ["http://localhost:5173"]
//	log:
//	  level: info        # debug, info, warn, error
//	  format: text       # text or json
//	metrics:
//	  enabled: true
//	  namespace: memolab
//	  subsystem: ""
//	  constLabels: {env: dev}
//	  buckets: [0.001, 0.01, 0.1, 1]
//	tracing:
//	  tracerName: memolab
//	demo:
//	  expensiveIterations: 10000000
//	  eventLogCapacity: 1000
//
// MEMOLAB_PORT and MEMOLAB_LOG_LEVEL override the file.
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(path)
//	if err != nil {
//	    errors.PrintError(err)
//	    os.Exit(1)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
