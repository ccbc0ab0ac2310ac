package client

import "sync"

// Status messages shown in the engine status field.
const (
	StatusStarting  = "Engine starting..."
	StatusReady     = "Engine ready"
	StatusNoResults = "No results found"
	StatusError     = "Engine error!"
)

// MsgLoadError replaces the query string when a fetch fails.
const MsgLoadError = "Error loading data."

// StatusView is the query-info panel the controller writes to.
type StatusView interface {
	SetEngineStatus(msg string)
	SetAccidentCount(text string)
	SetQueryTime(text string)
	SetDataScanned(text string)
	SetQueryString(text string)
	SetQueryInfoVisible(visible bool)
}

// PanelState is the text of each panel field.
type PanelState struct {
	EngineStatus     string `json:"engine_status"`
	AccidentCount    string `json:"accident_count"`
	QueryTime        string `json:"query_time"`
	DataScanned      string `json:"data_scanned"`
	QueryString      string `json:"query_string"`
	QueryInfoVisible bool   `json:"query_info_visible"`
}

// Panel is an in-memory StatusView.
type Panel struct {
	mu    sync.Mutex
	state PanelState
}

// State returns a copy of the panel fields.
func (p *Panel) State() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Panel) set(fn func(*PanelState)) {
	p.mu.Lock()
	fn(&p.state)
	p.mu.Unlock()
}

// SetEngineStatus sets the engine status line.
func (p *Panel) SetEngineStatus(msg string) { p.set(func(s *PanelState) { s.EngineStatus = msg }) }

// SetAccidentCount sets the accident count text.
func (p *Panel) SetAccidentCount(text string) { p.set(func(s *PanelState) { s.AccidentCount = text }) }

// SetQueryTime sets the query time text.
func (p *Panel) SetQueryTime(text string) { p.set(func(s *PanelState) { s.QueryTime = text }) }

// SetDataScanned sets the data scanned text.
func (p *Panel) SetDataScanned(text string) { p.set(func(s *PanelState) { s.DataScanned = text }) }

// SetQueryString sets the query string text.
func (p *Panel) SetQueryString(text string) { p.set(func(s *PanelState) { s.QueryString = text }) }

// SetQueryInfoVisible shows or hides the query-info panel.
func (p *Panel) SetQueryInfoVisible(visible bool) {
	p.set(func(s *PanelState) { s.QueryInfoVisible = visible })
}
