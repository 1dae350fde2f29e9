/*
Package dat implements a double-array trie over raw byte keys, used as the
lookup structure of the lexicon. The frozen form is two parallel int32 arrays
that can be adopted directly from a dictionary image without copying; the
builder produces the same layout from key/value pairs.

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package dat

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'wakachi.dat'
func tracer() tracing.Trace {
	return tracing.Select("wakachi.dat")
}
