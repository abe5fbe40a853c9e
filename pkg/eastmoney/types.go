package eastmoney

import "encoding/json"

// push-API envelope: the payload of interest always sits under "data",
// which is null when the provider has nothing for the query.
type pushEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// fund list payload: one loosely-typed object per instrument, field ids as
// keys ("f12", "f14", ...). Values are numbers, or "-" while halted.
type fundListData struct {
	Total int              `json:"total"`
	Diff  []map[string]any `json:"diff"`
}

// single-quote payload for futures contracts.
type futuresQuoteData struct {
	Volume       any `json:"f47"`
	OpenInterest any `json:"f108"`
}
