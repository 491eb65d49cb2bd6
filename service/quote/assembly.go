package quote

import salesEntity "weftshop.GO/model/entity/sales"

// AssemblyOption is a finishing surcharge: sewn-in wefts, keratin tips, clip
// sets. FLAT charges a fixed amount per line, PER_GRAM scales with grams.
type AssemblyOption struct {
	Code   string
	Type   salesEntity.AssemblyType
	Amount float64
}

// Fee computes the surcharge for a line of the given grams.
func (o AssemblyOption) Fee(grams int) float64 {
	if o.Type == salesEntity.AssemblyPerGram {
		return o.Amount * float64(grams)
	}
	return o.Amount
}

var assemblyOptions = map[string]AssemblyOption{
	"none":         {Code: "none", Type: salesEntity.AssemblyFlat, Amount: 0},
	"sewn_weft":    {Code: "sewn_weft", Type: salesEntity.AssemblyFlat, Amount: 15.00},
	"clip_set":     {Code: "clip_set", Type: salesEntity.AssemblyFlat, Amount: 25.00},
	"keratin_tips": {Code: "keratin_tips", Type: salesEntity.AssemblyPerGram, Amount: 0.35},
}

// AssemblyOptionFor returns the option for a code. Unknown codes fall back to
// the zero-fee flat option.
func AssemblyOptionFor(code string) AssemblyOption {
	if o, ok := assemblyOptions[code]; ok {
		return o
	}
	return assemblyOptions["none"]
}
