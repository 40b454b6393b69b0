package domain

// Asset is an immutable snapshot of one tradable asset from the exchange
// catalog. The catalog is fetched once per session and indexed by both ID and
// code; re-fetching requires an explicit reset.
type Asset struct {
	ID                    string
	Code                  string
	Name                  string
	PriceScale            int
	MinimumOrder          float64
	MinimumOrderIncrement float64
	MiningFee             float64
	MinWithdrawal         float64
	DepositEnabled        bool
	WithdrawEnabled       bool
}

// Currency is the unified currency shape derived from an Asset.
type Currency struct {
	ID          string
	Code        string
	Name        string
	Active      bool
	Deposit     bool
	Withdraw    bool
	Fee         float64
	Precision   float64
	MinAmount   float64
	MinWithdraw float64
}

// Balance holds the funds for one currency code. The exchange only reports an
// available figure, so Free and Total are the same value.
type Balance struct {
	Free  float64
	Total float64
}

// Balances maps currency codes to balances.
type Balances map[string]Balance
