// Package factory turns the type/conf entries of the configuration file into
// running modules. Each pluggable concern (metrics sinks today) owns a
// Registry; infra packages register their constructors from init and the
// application asks the registry to build whatever the operator listed.
//
//	metrics:
//	  sinks:
//	    - type: prometheus
//	    - type: kpi
//	      conf:
//	        path: /var/lib/vpp/kpi.db
//
// Conf maps go through Decode, which reads json tags and accepts the string
// forms produced by environment overrides ("300" for an int, "5s" for a
// duration).
package factory
