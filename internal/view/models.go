package view

import (
	"html/template"
	"time"

	"github.com/newthinker/tasi/internal/core"
)

// Section ids.
const (
	SectionDashboard  = "dashboard"
	SectionStocks     = "stocks"
	SectionIndicators = "indicators"
	SectionStrategies = "strategies"
)

// Section is one navigation tab.
type Section struct {
	ID    string
	Title string
	Icon  string
}

// Sections lists the tabs in display order.
var Sections = []Section{
	{ID: SectionDashboard, Title: "لوحة التحكم", Icon: "tachometer-alt"},
	{ID: SectionStocks, Title: "الأسهم", Icon: "chart-line"},
	{ID: SectionIndicators, Title: "المؤشرات التقنية", Icon: "chart-bar"},
	{ID: SectionStrategies, Title: "الاستراتيجيات", Icon: "chess"},
}

// KnownSection reports whether id names a section.
func KnownSection(id string) bool {
	for _, s := range Sections {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Nav is the navigation region payload.
type Nav struct {
	Active   string
	Sections []Section
}

// StockGrid is the stock grid payload.
type StockGrid struct {
	Stocks []core.Stock
	Term   string
	Total  int
}

// StockDetail is the open modal payload. A nil detail closes the modal.
type StockDetail struct {
	Stock     core.Stock
	Quote     core.Quote
	UpdatedAt time.Time
}

// StockOptions is the stock select payload.
type StockOptions struct {
	Stocks   []core.Stock
	Selected string
}

// SignalsView is the current signals payload. A nil report shows the hint.
type SignalsView struct {
	Report *core.SignalReport
}

// StrategyView is the strategy results payload.
type StrategyView struct {
	Key     string
	Result  *core.StrategyResult
	Pending bool
	JobID   string
}

// Notification types.
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyInfo    = "info"
	NotifyWarning = "warning"
)

// Notification is one toast.
type Notification struct {
	ID      string
	Type    string
	Message string
	Created time.Time
}

// Toasts is the toast container payload.
type Toasts struct {
	Items []Notification
}

// PageData is the full page payload. Regions holds pre-rendered region content.
type PageData struct {
	Title      string
	Active     string
	Regions    map[string]template.HTML
	Charts     []string
	Strategies []string
}
