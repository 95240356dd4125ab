// Package loader registers the default authmetacache drivers via blank
// imports.
//
// Usage:
//
//	import _ "github.com/openalljoyn/authzcore/internal/authmetacache/loader"
package loader

import (
	_ "github.com/openalljoyn/authzcore/internal/authmetacache/memory"
	_ "github.com/openalljoyn/authzcore/internal/authmetacache/redis"
)
