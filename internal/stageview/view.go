// Package stageview assembles the per-page lead table configuration for each pipeline page
// and applies its filter chain. Every page is one Kind; assembly is a single exhaustive switch.
package stageview

import (
	"fmt"
	"slices"
)

type Kind string

const (
	KindAll         Kind = "all"
	KindSourcing    Kind = "sourcing"
	KindTelecalling Kind = "telecalling"
	KindDemo        Kind = "demo"
	KindPOC         Kind = "poc"
	KindProposal    Kind = "proposal"
	KindNegotiation Kind = "negotiation"
	KindClosed      Kind = "closed"
)

func Kinds() []Kind {
	return []Kind{KindAll, KindSourcing, KindTelecalling, KindDemo, KindPOC, KindProposal, KindNegotiation, KindClosed}
}

// Column keys match LeadRow JSON field names.
type Column struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
}

type FilterKey string

const (
	FilterStage    FilterKey = "stage_id"
	FilterSource   FilterKey = "source_id"
	FilterIndustry FilterKey = "industry_id"
	FilterLOB      FilterKey = "lob_id"
	FilterCity     FilterKey = "city_id"
	FilterProduct  FilterKey = "product_id"
	FilterOutcome  FilterKey = "outcome"
)

type Action string

const (
	ActionEdit        Action = "edit"
	ActionDelete      Action = "delete"
	ActionLogCall     Action = "log_call"
	ActionCallHistory Action = "call_history"
	ActionLogMeeting  Action = "log_meeting"
	ActionMeetings    Action = "meeting_history"
	ActionMoveStage   Action = "move_stage"
	ActionImport      Action = "import"
	ActionExport      Action = "export"
)

type View struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
	// Stages limits the page to leads in these stage names; empty means every stage.
	Stages   []string    `json:"stages"`
	Columns  []Column    `json:"columns"`
	Filters  []FilterKey `json:"filters"`
	Editable []string    `json:"editable"`
	Actions  []Action    `json:"actions"`
}

var (
	colAccount     = Column{Key: "account_name", Label: "Account", Sortable: true}
	colContact     = Column{Key: "contact_name", Label: "Contact"}
	colPhone       = Column{Key: "contact_phone", Label: "Phone"}
	colIndustry    = Column{Key: "industry_name", Label: "Industry", Sortable: true}
	colCity        = Column{Key: "city_name", Label: "City", Sortable: true}
	colStage       = Column{Key: "stage_name", Label: "Stage", Sortable: true}
	colStatus      = Column{Key: "status_name", Label: "Status", Sortable: true}
	colSource      = Column{Key: "source_name", Label: "Source", Sortable: true}
	colProduct     = Column{Key: "product_name", Label: "Product", Sortable: true}
	colLOB         = Column{Key: "lob_name", Label: "Line of business"}
	colGenerator   = Column{Key: "generator_name", Label: "Generated by"}
	colEnrichment  = Column{Key: "data_enrichment_name", Label: "Data enrichment"}
	colTelecaller  = Column{Key: "telecaller_name", Label: "Telecaller", Sortable: true}
	colBD          = Column{Key: "bd_name", Label: "BD", Sortable: true}
	colLastOutcome = Column{Key: "last_call_outcome", Label: "Last outcome"}
	colFollowUp    = Column{Key: "follow_up_at", Label: "Follow-up", Sortable: true}
	colValue       = Column{Key: "expected_value", Label: "Expected value", Sortable: true}
	colCreated     = Column{Key: "created_at", Label: "Created", Sortable: true}
)

var baseFilters = []FilterKey{FilterSource, FilterIndustry, FilterLOB, FilterCity, FilterProduct}

// For assembles the view of one page.
func For(kind Kind) (View, error) {
	v := View{Kind: kind, Actions: []Action{ActionEdit, ActionDelete, ActionMoveStage}}

	switch kind {
	case KindAll:
		v.Title = "All Leads"
		v.Columns = []Column{colAccount, colContact, colIndustry, colCity, colStage, colStatus, colSource, colProduct, colBD, colValue, colCreated}
		v.Filters = append([]FilterKey{FilterStage}, baseFilters...)
		v.Editable = []string{"status_id", "expected_value"}
		v.Actions = append(v.Actions, ActionImport, ActionExport)
	case KindSourcing:
		v.Title = "Sourcing"
		v.Stages = []string{"Sourcing"}
		v.Columns = []Column{colAccount, colIndustry, colCity, colSource, colLOB, colGenerator, colEnrichment, colStatus, colCreated}
		v.Filters = slices.Clone(baseFilters)
		v.Editable = []string{"status_id", "data_enrichment_id", "source_id"}
		v.Actions = append(v.Actions, ActionImport, ActionExport)
	case KindTelecalling:
		v.Title = "Telecalling"
		v.Stages = []string{"Telecalling"}
		v.Columns = []Column{colAccount, colContact, colPhone, colCity, colTelecaller, colStatus, colLastOutcome, colFollowUp, colCreated}
		v.Filters = append(slices.Clone(baseFilters), FilterOutcome)
		v.Editable = []string{"status_id", "telecaller_id", "follow_up_at"}
		v.Actions = append(v.Actions, ActionLogCall, ActionCallHistory, ActionExport)
	case KindDemo, KindPOC:
		v.Title = "Demo"
		v.Stages = []string{"Demo"}
		if kind == KindPOC {
			v.Title = "POC"
			v.Stages = []string{"POC"}
		}
		v.Columns = []Column{colAccount, colContact, colIndustry, colProduct, colBD, colStatus, colValue, colFollowUp, colCreated}
		v.Filters = slices.Clone(baseFilters)
		v.Editable = []string{"status_id", "bd_id", "expected_value", "follow_up_at"}
		v.Actions = append(v.Actions, ActionLogMeeting, ActionMeetings, ActionExport)
	case KindProposal, KindNegotiation:
		v.Title = "Proposal"
		v.Stages = []string{"Proposal"}
		if kind == KindNegotiation {
			v.Title = "Negotiation"
			v.Stages = []string{"Negotiation"}
		}
		v.Columns = []Column{colAccount, colContact, colProduct, colBD, colStatus, colValue, colFollowUp, colCreated}
		v.Filters = []FilterKey{FilterSource, FilterIndustry, FilterProduct}
		v.Editable = []string{"status_id", "expected_value", "follow_up_at"}
		v.Actions = append(v.Actions, ActionLogMeeting, ActionMeetings, ActionExport)
	case KindClosed:
		v.Title = "Closed"
		v.Stages = []string{"Won", "Lost"}
		v.Columns = []Column{colAccount, colIndustry, colProduct, colBD, colStage, colStatus, colValue, colCreated}
		v.Filters = []FilterKey{FilterStage, FilterSource, FilterIndustry, FilterProduct}
		v.Editable = []string{"status_id"}
		v.Actions = []Action{ActionEdit, ActionExport}
	default:
		return View{}, fmt.Errorf("unknown stage view %q", kind)
	}
	return v, nil
}

// All assembles every view in Kinds order.
func All() []View {
	views := make([]View, 0, len(Kinds()))
	for _, k := range Kinds() {
		v, _ := For(k)
		views = append(views, v)
	}
	return views
}

func (v View) HasFilter(key FilterKey) bool {
	return slices.Contains(v.Filters, key)
}

func (v View) HasAction(a Action) bool {
	return slices.Contains(v.Actions, a)
}

func (v View) sortable(key string) bool {
	for _, c := range v.Columns {
		if c.Key == key {
			return c.Sortable
		}
	}
	return false
}
