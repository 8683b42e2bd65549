package model

// LookupKind selects which on-chain account layout a template's extra field
// resolves to. The set is closed; unknown extra fields map to LookupNone.
type LookupKind int

const (
	LookupNone LookupKind = iota
	LookupDao
	LookupProposal
)

// ParseLookupKind maps a template extra field to its lookup kind.
func ParseLookupKind(extraField string) LookupKind {
	switch extraField {
	case "dao":
		return LookupDao
	case "proposal":
		return LookupProposal
	default:
		return LookupNone
	}
}

func (k LookupKind) String() string {
	switch k {
	case LookupDao:
		return "dao"
	case LookupProposal:
		return "proposal"
	default:
		return "none"
	}
}

// ContentTemplate maps a (dapp, event name) pair to rendering fragments.
type ContentTemplate struct {
	DappID      string `json:"dapp_id"`
	EventName   string `json:"event_name"`
	Subject     string `json:"subject"`
	Conjunction string `json:"conjunction"`
	Object      string `json:"object"`
	ExtraField  string `json:"extra_field"`
}

// RenderContent joins the template fragments with single spaces.
func (t ContentTemplate) RenderContent() string {
	return t.Subject + " " + t.Conjunction + " " + t.Object
}

// ExtraKind returns the lookup kind declared by the extra field.
func (t ContentTemplate) ExtraKind() LookupKind {
	return ParseLookupKind(t.ExtraField)
}
