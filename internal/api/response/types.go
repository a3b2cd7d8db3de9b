package response

import (
	"time"

	"github.com/mcoot/rightsquest/internal/model"
	"github.com/mcoot/rightsquest/internal/services/progression"
	"github.com/mcoot/rightsquest/internal/services/session"
)

// User represents a learner in API responses
type User struct {
	ID               string    `json:"id"`
	WalletAddress    string    `json:"wallet_address"`
	Score            int       `json:"score"`
	CompletedModules []string  `json:"completed_modules"`
	Badges           []string  `json:"badges"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	completed := make([]string, len(u.CompletedModules))
	for i, id := range u.CompletedModules {
		completed[i] = string(id)
	}
	badges := make([]string, len(u.Badges))
	for i, id := range u.Badges {
		badges[i] = string(id)
	}
	return User{
		ID:               string(u.ID),
		WalletAddress:    u.WalletAddress,
		Score:            u.Score,
		CompletedModules: completed,
		Badges:           badges,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

// ConnectResponse is the response for connecting a wallet
type ConnectResponse struct {
	User    User         `json:"user"`
	Session SessionState `json:"session"`
}

// OperationError is the last failed session operation
type OperationError struct {
	Operation string `json:"operation"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

// SessionState represents the transient state of a user's session
type SessionState struct {
	Loading   bool            `json:"loading"`
	InFlight  int             `json:"in_flight"`
	Connected bool            `json:"connected"`
	LastError *OperationError `json:"last_error"`
}

// SessionStateFromModel converts a session.State
func SessionStateFromModel(s session.State) SessionState {
	out := SessionState{
		Loading:   s.Loading,
		InFlight:  s.InFlight,
		Connected: s.Connected,
	}
	if s.LastError != nil {
		out.LastError = &OperationError{
			Operation: s.LastError.Operation,
			Kind:      s.LastError.Kind,
			Message:   s.LastError.Message,
		}
	}
	return out
}

// Stats represents derived game stats
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

// StatsFromModel converts model.GameStats, with the next badge to aim for
func StatsFromModel(s model.GameStats, next *model.Badge) Stats {
	out := Stats{
		TotalScore:        s.TotalScore,
		Level:             s.Level,
		Rank:              s.Rank,
		PointsToNextLevel: s.PointsToNextLevel,
		ModulesCompleted:  s.ModulesCompleted,
		ModulesTotal:      s.ModulesTotal,
		ProgressPercent:   s.ProgressPercent,
		BadgesEarned:      s.BadgesEarned,
		Streak:            s.Streak,
	}
	if next != nil {
		b := BadgeFromModel(*next)
		out.NextBadge = &b
	}
	return out
}

// Module represents a catalog module
type Module struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Type            string   `json:"type"`
	Points          int      `json:"points"`
	Unlocks         []string `json:"unlocks"`
	Difficulty      string   `json:"difficulty"`
	DurationMinutes int      `json:"duration_minutes"`
}

// ModuleFromModel converts model.Module
func ModuleFromModel(m model.Module) Module {
	unlocks := make([]string, len(m.Unlocks))
	for i, id := range m.Unlocks {
		unlocks[i] = string(id)
	}
	return Module{
		ID:              string(m.ID),
		Title:           m.Title,
		Type:            string(m.Type),
		Points:          m.Points,
		Unlocks:         unlocks,
		Difficulty:      string(m.Difficulty),
		DurationMinutes: int(m.Duration.Minutes()),
	}
}

// ModuleStatus is a module annotated with a user's lock state
type ModuleStatus struct {
	Module
	Unlocked  bool `json:"unlocked"`
	Completed bool `json:"completed"`
}

// ModuleStatusFromModel converts progression.ModuleStatus
func ModuleStatusFromModel(s progression.ModuleStatus) ModuleStatus {
	return ModuleStatus{
		Module:    ModuleFromModel(s.Module),
		Unlocked:  s.Unlocked,
		Completed: s.Completed,
	}
}

// Badge represents a catalog badge
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Tier        string `json:"tier"`
	Description string `json:"description"`
}

// BadgeFromModel converts model.Badge
func BadgeFromModel(b model.Badge) Badge {
	return Badge{
		ID:          string(b.ID),
		Name:        b.Name,
		Kind:        string(b.Kind),
		Tier:        b.Tier.String(),
		Description: b.Description,
	}
}

// Level represents one row of the leveling table
type Level struct {
	Number    int    `json:"number"`
	MinPoints int    `json:"min_points"`
	Title     string `json:"title"`
}

// LevelFromModel converts model.Level
func LevelFromModel(l model.Level) Level {
	return Level{
		Number:    l.Number,
		MinPoints: l.MinPoints,
		Title:     l.Title,
	}
}

// StartModuleResponse is the response for starting a module
type StartModuleResponse struct {
	User             User     `json:"user"`
	ModuleID         string   `json:"module_id"`
	AlreadyCompleted bool     `json:"already_completed"`
	PointsAwarded    int      `json:"points_awarded"`
	BadgesAwarded    []string `json:"badges_awarded"`
}

// StartModuleResponseFromModel converts a completion and the updated user
func StartModuleResponseFromModel(u *model.User, c progression.Completion) StartModuleResponse {
	badges := make([]string, len(c.BadgesAwarded))
	for i, id := range c.BadgesAwarded {
		badges[i] = string(id)
	}
	return StartModuleResponse{
		User:             UserFromModel(u),
		ModuleID:         string(c.ModuleID),
		AlreadyCompleted: c.AlreadyCompleted,
		PointsAwarded:    c.PointsAwarded,
		BadgesAwarded:    badges,
	}
}

// PaymentError is the classified failure of a payment attempt
type PaymentError struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PaymentOutcome represents the result of one payment attempt
type PaymentOutcome struct {
	State         string        `json:"state"`
	TxRef         string        `json:"tx_ref,omitempty"`
	Confirmations int           `json:"confirmations"`
	Error         *PaymentError `json:"error,omitempty"`
}

// PaymentOutcomeFromModel converts model.PaymentOutcome; code is the API
// error code for the failure kind
func PaymentOutcomeFromModel(o model.PaymentOutcome, code string) PaymentOutcome {
	out := PaymentOutcome{
		State:         string(o.State),
		TxRef:         string(o.TxRef),
		Confirmations: o.Confirmations,
	}
	if o.Error != nil {
		out.Error = &PaymentError{
			Kind:    string(o.Error.Kind),
			Code:    code,
			Message: o.Error.Message,
		}
	}
	return out
}

// PaymentConfig represents the network configuration
type PaymentConfig struct {
	ChainID      int64  `json:"chain_id"`
	TokenAddress string `json:"token_address"`
	RPCURL       string `json:"rpc_url"`
}

// PaymentConfigFromModel converts model.PaymentConfig
func PaymentConfigFromModel(c model.PaymentConfig) PaymentConfig {
	return PaymentConfig{
		ChainID:      c.ChainID,
		TokenAddress: c.TokenAddress,
		RPCURL:       c.RPCURL,
	}
}

// TestPayment is the fixed request the dry run validates
type TestPayment struct {
	Amount      string `json:"amount"`
	Recipient   string `json:"recipient"`
	Description string `json:"description"`
}

// DryRunResult represents the result of the test payment flow
type DryRunResult struct {
	Success         bool          `json:"success"`
	Message         string        `json:"message"`
	Config          PaymentConfig `json:"config"`
	TestPayment     TestPayment   `json:"test_payment"`
	WalletConnected bool          `json:"wallet_connected"`
}

// DryRunResultFromModel converts model.DryRunResult
func DryRunResultFromModel(r model.DryRunResult) DryRunResult {
	return DryRunResult{
		Success: r.Success,
		Message: r.Message,
		Config:  PaymentConfigFromModel(r.Config),
		TestPayment: TestPayment{
			Amount:      r.TestPayment.Amount,
			Recipient:   r.TestPayment.Recipient,
			Description: r.TestPayment.Description,
		},
		WalletConnected: r.WalletConnected,
	}
}

// PaymentStatus represents the network status of a transaction
type PaymentStatus struct {
	TxRef         string `json:"tx_ref"`
	Status        string `json:"status"`
	Confirmations int    `json:"confirmations"`
}

// PaymentStatusFromModel converts model.PaymentStatusReport
func PaymentStatusFromModel(r model.PaymentStatusReport) PaymentStatus {
	return PaymentStatus{
		TxRef:         string(r.TxRef),
		Status:        string(r.Status),
		Confirmations: r.Confirmations,
	}
}

// Receipt represents a stored successful payment
type Receipt struct {
	TxRef         string    `json:"tx_ref"`
	Amount        string    `json:"amount"`
	Recipient     string    `json:"recipient"`
	Description   string    `json:"description,omitempty"`
	Confirmations int       `json:"confirmations"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReceiptFromModel converts model.PaymentReceipt
func ReceiptFromModel(r *model.PaymentReceipt) Receipt {
	return Receipt{
		TxRef:         string(r.TxRef),
		Amount:        r.Amount,
		Recipient:     r.Recipient,
		Description:   r.Description,
		Confirmations: r.Confirmations,
		CreatedAt:     r.CreatedAt,
	}
}
