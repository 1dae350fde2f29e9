package wakachi

// bosEOSConnectionID is the fixed connection id of BOS and EOS.
const bosEOSConnectionID uint16 = 0

// matrixConnector is the connection-cost matrix: a contiguous row-major
// table of i16 costs indexed by (right id of the left word, left id of the
// right word). The data slice is typically a view into the dictionary image.
//
// Right ids are remapped for cache locality by the external compiler; the
// core treats them as opaque integers.
type matrixConnector struct {
	data     []int16
	numRight int
	numLeft  int
}

func newMatrixConnector(data []int16, numRight, numLeft int) (matrixConnector, error) {
	c := matrixConnector{data: data, numRight: numRight, numLeft: numLeft}
	if numRight <= 0 || numLeft <= 0 {
		return c, formatErrorf("connection matrix", "dimensions %dx%d", numRight, numLeft)
	}
	if len(data) != numRight*numLeft {
		return c, formatErrorf("connection matrix",
			"data length %d does not match %dx%d", len(data), numRight, numLeft)
	}
	return c, nil
}

// cost returns the transition cost from a word with rightID to a word with
// leftID. Both ids must be in range; out-of-range ids indicate a programming
// error (ids are validated when the dictionary is built or loaded).
func (c *matrixConnector) cost(rightID, leftID uint16) int32 {
	return int32(c.data[int(rightID)*c.numLeft+int(leftID)])
}

// verifyParam reports whether a word parameter's connection ids fit the
// matrix dimensions.
func (c *matrixConnector) verifyParam(p WordParam) bool {
	return int(p.LeftID) < c.numLeft && int(p.RightID) < c.numRight
}
