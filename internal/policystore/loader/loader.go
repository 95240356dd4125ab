// Package loader registers the default policystore drivers via blank
// imports.
//
// Usage:
//
//	import _ "github.com/openalljoyn/authzcore/internal/policystore/loader"
package loader

import (
	_ "github.com/openalljoyn/authzcore/internal/policystore/json"
	_ "github.com/openalljoyn/authzcore/internal/policystore/mirror"
	_ "github.com/openalljoyn/authzcore/internal/policystore/sqlite"
)
