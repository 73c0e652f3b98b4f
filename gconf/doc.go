/*

Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each package keeps a single configuration object stored under the "_c:<pkg>"
key. Configurations are validated before being written and are loaded from
the genesis file "conf" section, keyed by package name:

	{
	  "conf": {
	    "runtime": {"rent": {...}, "max_invoke_depth": 4},
	    "escrow": {"close_on_settle": true}
	  }
	}

*/
package gconf
