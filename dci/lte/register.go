package lte

import "github.com/pdcch-replay/pdcch-replay/dci"

func init() {
	dci.NewCodecFunc = func() dci.Codec { return New() }
}
