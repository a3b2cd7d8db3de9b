package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case User:
		o.printUser(v)
	case ConnectResult:
		o.printUser(v.User)
		o.printSession(v.Session)
	case SessionState:
		o.printSession(v)
	case Stats:
		o.printStats(v)
	case []Module:
		for _, m := range v {
			fmt.Fprintf(o.w, "%-20s %-12s %4d pts  %3d min  -> %s\n",
				m.ID, m.Difficulty, m.Points, m.DurationMinutes, orNone(m.Unlocks))
		}
	case []ModuleStatus:
		for _, m := range v {
			fmt.Fprintf(o.w, "%-20s %s\n", m.ID, moduleMark(m))
		}
	case []Badge:
		for _, b := range v {
			fmt.Fprintf(o.w, "%-18s %-9s %s\n", b.ID, b.Tier, b.Description)
		}
	case []Level:
		for _, l := range v {
			fmt.Fprintf(o.w, "%d  %-16s %5d pts\n", l.Number, l.Title, l.MinPoints)
		}
	case StartModuleResult:
		o.printStartModule(v)
	case PaymentOutcome:
		o.printOutcome(v)
	case DryRunResult:
		o.printDryRun(v)
	case PaymentStatus:
		fmt.Fprintf(o.w, "Transaction: %s\n", v.TxRef)
		fmt.Fprintf(o.w, "Status: %s (%d confirmations)\n", v.Status, v.Confirmations)
	case []Receipt:
		if len(v) == 0 {
			fmt.Fprintln(o.w, "No payments")
		}
		for _, r := range v {
			fmt.Fprintf(o.w, "%s  %s -> %s  %s\n", r.CreatedAt, r.Amount, r.Recipient, r.TxRef)
		}
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// User response type (matches API)
type User struct {
	ID               string   `json:"id"`
	WalletAddress    string   `json:"wallet_address"`
	Score            int      `json:"score"`
	CompletedModules []string `json:"completed_modules"`
	Badges           []string `json:"badges"`
}

// OperationError response type
type OperationError struct {
	Operation string `json:"operation"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

// SessionState response type
type SessionState struct {
	Loading   bool            `json:"loading"`
	InFlight  int             `json:"in_flight"`
	Connected bool            `json:"connected"`
	LastError *OperationError `json:"last_error"`
}

// ConnectResult response type
type ConnectResult struct {
	User    User         `json:"user"`
	Session SessionState `json:"session"`
}

// Badge response type
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Tier        string `json:"tier"`
	Description string `json:"description"`
}

// Stats response type
type Stats struct {
	TotalScore        int    `json:"total_score"`
	Level             int    `json:"level"`
	Rank              string `json:"rank"`
	PointsToNextLevel int    `json:"points_to_next_level"`
	ModulesCompleted  int    `json:"modules_completed"`
	ModulesTotal      int    `json:"modules_total"`
	ProgressPercent   int    `json:"progress_percent"`
	BadgesEarned      int    `json:"badges_earned"`
	Streak            int    `json:"streak"`
	NextBadge         *Badge `json:"next_badge"`
}

// Module response type
type Module struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Type            string   `json:"type"`
	Points          int      `json:"points"`
	Unlocks         []string `json:"unlocks"`
	Difficulty      string   `json:"difficulty"`
	DurationMinutes int      `json:"duration_minutes"`
}

// ModuleStatus response type
type ModuleStatus struct {
	Module
	Unlocked  bool `json:"unlocked"`
	Completed bool `json:"completed"`
}

// Level response type
type Level struct {
	Number    int    `json:"number"`
	MinPoints int    `json:"min_points"`
	Title     string `json:"title"`
}

// StartModuleResult response type
type StartModuleResult struct {
	User             User     `json:"user"`
	ModuleID         string   `json:"module_id"`
	AlreadyCompleted bool     `json:"already_completed"`
	PointsAwarded    int      `json:"points_awarded"`
	BadgesAwarded    []string `json:"badges_awarded"`
}

// PaymentError response type
type PaymentError struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PaymentOutcome response type
type PaymentOutcome struct {
	State         string        `json:"state"`
	TxRef         string        `json:"tx_ref,omitempty"`
	Confirmations int           `json:"confirmations"`
	Error         *PaymentError `json:"error,omitempty"`
}

// DryRunResult response type
type DryRunResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Config  struct {
		ChainID      int64  `json:"chain_id"`
		TokenAddress string `json:"token_address"`
		RPCURL       string `json:"rpc_url"`
	} `json:"config"`
	TestPayment struct {
		Amount      string `json:"amount"`
		Recipient   string `json:"recipient"`
		Description string `json:"description"`
	} `json:"test_payment"`
	WalletConnected bool `json:"wallet_connected"`
}

// PaymentStatus response type
type PaymentStatus struct {
	TxRef         string `json:"tx_ref"`
	Status        string `json:"status"`
	Confirmations int    `json:"confirmations"`
}

// Receipt response type
type Receipt struct {
	TxRef         string `json:"tx_ref"`
	Amount        string `json:"amount"`
	Recipient     string `json:"recipient"`
	Description   string `json:"description,omitempty"`
	Confirmations int    `json:"confirmations"`
	CreatedAt     string `json:"created_at"`
}

func (o *Output) printUser(u User) {
	fmt.Fprintf(o.w, "User: %s\n", u.ID)
	fmt.Fprintf(o.w, "Wallet: %s\n", u.WalletAddress)
	fmt.Fprintf(o.w, "Score: %d\n", u.Score)
	fmt.Fprintf(o.w, "Completed: %s\n", orNone(u.CompletedModules))
	fmt.Fprintf(o.w, "Badges: %s\n", orNone(u.Badges))
}

func (o *Output) printSession(s SessionState) {
	connected := "no"
	if s.Connected {
		connected = "yes"
	}
	fmt.Fprintf(o.w, "Wallet connected: %s\n", connected)
	if s.Loading {
		fmt.Fprintf(o.w, "Operations in flight: %d\n", s.InFlight)
	}
	if s.LastError != nil {
		fmt.Fprintf(o.w, "Last error: %s (%s): %s\n", s.LastError.Operation, s.LastError.Kind, s.LastError.Message)
	}
}

func (o *Output) printStats(s Stats) {
	fmt.Fprintf(o.w, "Level %d: %s\n", s.Level, s.Rank)
	fmt.Fprintf(o.w, "Score: %d", s.TotalScore)
	if s.PointsToNextLevel > 0 {
		fmt.Fprintf(o.w, " (%d to next level)", s.PointsToNextLevel)
	}
	fmt.Fprintln(o.w)
	fmt.Fprintf(o.w, "Modules: %d/%d (%d%%)\n", s.ModulesCompleted, s.ModulesTotal, s.ProgressPercent)
	fmt.Fprintf(o.w, "Badges: %d\n", s.BadgesEarned)
	fmt.Fprintf(o.w, "Streak: %d days\n", s.Streak)
	if s.NextBadge != nil {
		fmt.Fprintf(o.w, "Next badge: %s (%s)\n", s.NextBadge.Name, s.NextBadge.Tier)
	}
}

func (o *Output) printStartModule(r StartModuleResult) {
	if r.AlreadyCompleted {
		fmt.Fprintf(o.w, "Module %s already completed\n", r.ModuleID)
		return
	}
	fmt.Fprintf(o.w, "Completed %s: +%d points (score %d)\n", r.ModuleID, r.PointsAwarded, r.User.Score)
	for _, b := range r.BadgesAwarded {
		fmt.Fprintf(o.w, "Badge earned: %s\n", b)
	}
}

func (o *Output) printOutcome(p PaymentOutcome) {
	fmt.Fprintf(o.w, "Payment: %s\n", p.State)
	if p.TxRef != "" {
		fmt.Fprintf(o.w, "Transaction: %s\n", p.TxRef)
	}
	if p.Error != nil {
		fmt.Fprintf(o.w, "Error: %s (%s)\n", p.Error.Message, p.Error.Code)
		return
	}
	fmt.Fprintf(o.w, "Confirmations: %d\n", p.Confirmations)
}

func (o *Output) printDryRun(r DryRunResult) {
	result := "FAIL"
	if r.Success {
		result = "OK"
	}
	fmt.Fprintf(o.w, "%s: %s\n", result, r.Message)
	fmt.Fprintf(o.w, "Chain: %d  Token: %s\n", r.Config.ChainID, r.Config.TokenAddress)
	fmt.Fprintf(o.w, "Test payment: %s to %s\n", r.TestPayment.Amount, r.TestPayment.Recipient)
}

func moduleMark(m ModuleStatus) string {
	switch {
	case m.Completed:
		return "completed"
	case m.Unlocked:
		return "unlocked"
	default:
		return "locked"
	}
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
