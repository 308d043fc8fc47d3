package platform

type (
	// PatternInfo is the serialized form of a path rule.
	PatternInfo struct {
		Source string `json:"source"`
		Flags  string `json:"flags,omitempty"`
	}

	// SelectorsInfo mirrors Selectors for the wire.
	SelectorsInfo struct {
		OrderTotal             []string `json:"orderTotal"`
		ItemName               []string `json:"itemName"`
		ConfirmationIndicators []string `json:"confirmationIndicators"`
	}

	// Info is the cross-context form of a Definition. The compiled host
	// pattern is omitted: callers receiving an Info already know which page
	// they are on, the host match has been done for them.
	Info struct {
		Key               string        `json:"key"`
		Name              string        `json:"name"`
		OrderPagePatterns []PatternInfo `json:"orderPagePatterns"`
		Selectors         SelectorsInfo `json:"selectors"`
		DefaultCategory   string        `json:"defaultCategory"`
	}
)

// Wire converts a Definition to its serializable form.
func (d *Definition) Wire() Info {
	patterns := make([]PatternInfo, len(d.OrderPagePatterns))
	for i, r := range d.OrderPagePatterns {
		patterns[i] = PatternInfo{Source: r.Source}
		if r.CaseInsensitive {
			patterns[i].Flags = "i"
		}
	}
	return Info{
		Key:               d.Key,
		Name:              d.Name,
		OrderPagePatterns: patterns,
		Selectors: SelectorsInfo{
			OrderTotal:             d.Selectors.OrderTotal,
			ItemName:               d.Selectors.ItemName,
			ConfirmationIndicators: d.Selectors.ConfirmationIndicators,
		},
		DefaultCategory: d.DefaultCategory,
	}
}
