// Package statetable builds machine definitions from YAML state tables.
//
// Callbacks cannot live in YAML, so the document names them and a Registry
// maps the names to Go functions:
//
//	name: radius-session
//	init: init
//	free: done
//	states:
//	  - name: init
//	    process: start
//	  - name: waiting
//	    enter: arm-timer
//	    process: read-reply
//	    exit: disarm-timer
//	  - name: done
//	    enter: cleanup
//
// State numbers default to the position in the list, starting at 1, and may be
// pinned with an explicit number field. Init and free refer to state names.
package statetable
