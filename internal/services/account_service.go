// Package services – AccountService
//
// This file implements AccountService, the read side of the wallet: account
// summaries, goal and loan sub-accounts, balances, and the quick-payee list
// derived from transaction history. Favourite payees are the only write.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// the user id and pagination parameters.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-wallet-backend/internal/domain"
	"github.com/tbourn/go-wallet-backend/internal/repo"
	"github.com/tbourn/go-wallet-backend/internal/utils"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
)

const (
	loanName   = "Credit Loan"
	loanStatus = "ACTIVE"
)

// Page is one page of an offset-paginated listing.
type Page[T any] struct {
	Data       []T            `json:"data"`
	Pagination utils.PageInfo `json:"pagination"`
}

// AccountSummary is the list view of an account joined with its balance and
// display detail.
type AccountSummary struct {
	AccountID     string          `json:"accountId" example:"acc-001"`
	Type          string          `json:"type" example:"SAVING_ACCOUNT"`
	Currency      string          `json:"currency" example:"THB"`
	AccountNumber string          `json:"accountNumber" example:"568-2-81740-9"`
	Issuer        string          `json:"issuer" example:"TestLab"`
	Color         *string         `json:"color" example:"#24c875"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"62000"`
	Status        string          `json:"status" example:"IN_PROGRESS"`
	IsMainAccount bool            `json:"isMainAccount" example:"true"`
}

// GoalItem is a GOAL sub-account.
type GoalItem struct {
	AccountID     string          `json:"accountId" example:"goal-001"`
	AccountNumber string          `json:"accountNumber" example:"568-2-81740-9"`
	Status        string          `json:"status" example:"IN_PROGRESS"`
	Issuer        string          `json:"issuer" example:"TestLab"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"1500.25"`
}

// LoanItem is a LOAN sub-account.
type LoanItem struct {
	AccountID string          `json:"accountId" example:"loan-001"`
	Name      string          `json:"name" example:"Credit Loan"`
	Status    string          `json:"status" example:"ACTIVE"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string" example:"12000"`
}

// PayeeItem is a quick payee. PayeeID is the id of the newest transaction
// made to that payee.
type PayeeItem struct {
	PayeeID    string `json:"payeeId" example:"tx-001"`
	Name       string `json:"name" example:"Billy"`
	Image      string `json:"image" example:"https://dummyimage.com/54x54/999/fff"`
	IsFavorite bool   `json:"isFavorite" example:"false"`
}

// AccountService serves account, goal, loan, balance and payee reads.
type AccountService struct {
	DB *gorm.DB
}

// NewAccountService constructs an AccountService over db.
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{DB: db}
}

func (s *AccountService) startSpan(ctx context.Context, name, userID string, page, limit int) (context.Context, trace.Span) {
	return otel.Tracer("services/AccountService").Start(ctx, name,
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("page", page),
			attribute.Int("limit", limit),
		),
	)
}

// ListAccounts returns a page of the user's accounts of any type, oldest
// first.
func (s *AccountService) ListAccounts(ctx context.Context, userID string, page, limit int) (Page[AccountSummary], error) {
	ctx, span := s.startSpan(ctx, "ListAccounts", userID, page, limit)
	defer span.End()

	return s.summaries(ctx, userID, page, limit)
}

// ListGoals returns a page of the user's GOAL accounts.
func (s *AccountService) ListGoals(ctx context.Context, userID string, page, limit int) (Page[GoalItem], error) {
	ctx, span := s.startSpan(ctx, "ListGoals", userID, page, limit)
	defer span.End()

	sums, err := s.summaries(ctx, userID, page, limit, domain.AccountTypeGoal)
	if err != nil {
		return Page[GoalItem]{}, err
	}
	out := Page[GoalItem]{Data: make([]GoalItem, 0, len(sums.Data)), Pagination: sums.Pagination}
	for _, a := range sums.Data {
		out.Data = append(out.Data, GoalItem{
			AccountID:     a.AccountID,
			AccountNumber: a.AccountNumber,
			Status:        a.Status,
			Issuer:        a.Issuer,
			Amount:        a.Amount,
		})
	}
	return out, nil
}

// ListLoans returns a page of the user's LOAN accounts.
func (s *AccountService) ListLoans(ctx context.Context, userID string, page, limit int) (Page[LoanItem], error) {
	ctx, span := s.startSpan(ctx, "ListLoans", userID, page, limit)
	defer span.End()

	sums, err := s.summaries(ctx, userID, page, limit, domain.AccountTypeLoan)
	if err != nil {
		return Page[LoanItem]{}, err
	}
	out := Page[LoanItem]{Data: make([]LoanItem, 0, len(sums.Data)), Pagination: sums.Pagination}
	for _, a := range sums.Data {
		out.Data = append(out.Data, LoanItem{
			AccountID: a.AccountID,
			Name:      loanName,
			Status:    loanStatus,
			Amount:    a.Amount,
		})
	}
	return out, nil
}

// Balances maps each of the user's account ids to its balance. Accounts
// without a balance row are absent.
func (s *AccountService) Balances(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	ctx, span := otel.Tracer("services/AccountService").Start(ctx, "Balances",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	rows, err := repo.ListBalances(ctx, s.DB, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list balances")
	}
	out := make(map[string]decimal.Decimal, len(rows))
	for _, b := range rows {
		out[b.AccountID] = b.Amount
	}
	return out, nil
}

// ListPayees returns a page of quick payees: one entry per distinct payee
// name (case-insensitive), ordered by the most recent transaction. A payee is
// a favourite when any of its transactions carries the FAVORITE flag.
func (s *AccountService) ListPayees(ctx context.Context, userID string, page, limit int) (Page[PayeeItem], error) {
	ctx, span := s.startSpan(ctx, "ListPayees", userID, page, limit)
	defer span.End()

	payees, err := s.payees(ctx, userID)
	if err != nil {
		return Page[PayeeItem]{}, err
	}
	lo, hi := utils.Window(len(payees), page, limit)
	data := make([]PayeeItem, hi-lo)
	copy(data, payees[lo:hi])
	return Page[PayeeItem]{
		Data:       data,
		Pagination: utils.NewPageInfo(page, limit, int64(len(payees))),
	}, nil
}

// SearchPayees is ListPayees restricted to payees whose name contains q,
// compared case-insensitively.
func (s *AccountService) SearchPayees(ctx context.Context, userID, q string, page, limit int) (Page[PayeeItem], error) {
	ctx, span := s.startSpan(ctx, "SearchPayees", userID, page, limit)
	defer span.End()

	payees, err := s.payees(ctx, userID)
	if err != nil {
		return Page[PayeeItem]{}, err
	}
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q))
	matched := make([]PayeeItem, 0, len(payees))
	for _, p := range payees {
		if strings.Contains(fold.String(p.Name), needle) {
			matched = append(matched, p)
		}
	}
	lo, hi := utils.Window(len(matched), page, limit)
	return Page[PayeeItem]{
		Data:       matched[lo:hi],
		Pagination: utils.NewPageInfo(page, limit, int64(len(matched))),
	}, nil
}

// AccountsVersion returns the inputs of the accounts list validator: the
// number of accounts and the newest change across accounts, balances and
// details.
func (s *AccountService) AccountsVersion(ctx context.Context, userID string) (int64, *time.Time, error) {
	count, maxAt, err := repo.AccountsStats(ctx, s.DB, userID)
	if err != nil {
		return 0, nil, errors.Wrap(err, "accounts stats")
	}
	return count, maxAt, nil
}

// SetFavorite sets or clears the FAVORITE flag on payeeID, which must be one
// of the user's transactions. It returns the payee as it now lists.
func (s *AccountService) SetFavorite(ctx context.Context, userID, payeeID string, favorite bool) (*PayeeItem, error) {
	ctx, span := otel.Tracer("services/AccountService").Start(ctx, "SetFavorite",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("payee.id", payeeID),
			attribute.Bool("favorite", favorite),
		),
	)
	defer span.End()

	tx, err := repo.GetUserTransaction(ctx, s.DB, userID, payeeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPayeeNotFound
		}
		return nil, errors.Wrap(err, "get payee transaction")
	}

	if favorite {
		err = repo.SetFlag(ctx, s.DB, userID, payeeID, domain.FlagFavorite)
	} else {
		// The payee lists as a favourite while any same-name transaction is
		// flagged, so clearing covers all of them.
		var ids []string
		ids, err = s.samePayee(ctx, userID, tx.Name)
		if err == nil {
			err = repo.ClearFlags(ctx, s.DB, userID, domain.FlagFavorite, ids...)
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "update favorite flag")
	}

	return &PayeeItem{
		PayeeID:    tx.ID,
		Name:       tx.Name,
		Image:      tx.Image,
		IsFavorite: favorite,
	}, nil
}

// samePayee returns the ids of the user's transactions whose name matches
// name case-insensitively.
func (s *AccountService) samePayee(ctx context.Context, userID, name string) ([]string, error) {
	txs, err := repo.ListUserTransactions(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	fold := cases.Fold()
	key := fold.String(strings.TrimSpace(name))
	var ids []string
	for _, t := range txs {
		if fold.String(strings.TrimSpace(t.Name)) == key {
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}

// summaries loads one page of accounts, optionally restricted to types, and
// joins balances and details for just that page.
func (s *AccountService) summaries(ctx context.Context, userID string, page, limit int, types ...string) (Page[AccountSummary], error) {
	total, err := repo.CountAccounts(ctx, s.DB, userID, types...)
	if err != nil {
		return Page[AccountSummary]{}, errors.Wrap(err, "count accounts")
	}
	info := utils.NewPageInfo(page, limit, total)
	if total == 0 {
		return Page[AccountSummary]{Data: []AccountSummary{}, Pagination: info}, nil
	}

	accounts, err := repo.ListAccountsPage(ctx, s.DB, userID, utils.Offset(page, limit), limit, types...)
	if err != nil {
		return Page[AccountSummary]{}, errors.Wrap(err, "list accounts")
	}
	if len(accounts) == 0 {
		return Page[AccountSummary]{Data: []AccountSummary{}, Pagination: info}, nil
	}

	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.AccountID
	}
	balances, err := repo.ListBalances(ctx, s.DB, userID, ids...)
	if err != nil {
		return Page[AccountSummary]{}, errors.Wrap(err, "list balances")
	}
	details, err := repo.ListDetails(ctx, s.DB, userID, ids...)
	if err != nil {
		return Page[AccountSummary]{}, errors.Wrap(err, "list details")
	}

	balByAcc := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		balByAcc[b.AccountID] = b.Amount
	}
	detByAcc := make(map[string]*domain.AccountDetail, len(details))
	for i := range details {
		detByAcc[details[i].AccountID] = &details[i]
	}

	out := make([]AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		cur := normalizeCurrency(a.Currency)
		sum := AccountSummary{
			AccountID:     a.AccountID,
			Type:          a.Type,
			Currency:      cur,
			AccountNumber: a.AccountNumber,
			Issuer:        a.Issuer,
			Amount:        roundForCurrency(balByAcc[a.AccountID], cur),
			Status:        domain.GoalUnknown,
		}
		// A missing detail row leaves color null and status UNKNOWN.
		if d, ok := detByAcc[a.AccountID]; ok {
			color := d.Color
			sum.Color = &color
			sum.Status = domain.GoalStatus(d.Progress)
			sum.IsMainAccount = d.IsMainAccount
		}
		out = append(out, sum)
	}
	return Page[AccountSummary]{Data: out, Pagination: info}, nil
}

// payees derives the distinct-name payee list from the user's transactions,
// newest first.
func (s *AccountService) payees(ctx context.Context, userID string) ([]PayeeItem, error) {
	favs, err := repo.ListFlaggedTargets(ctx, s.DB, userID, domain.FlagFavorite)
	if err != nil {
		return nil, errors.Wrap(err, "list favorites")
	}
	favSet := make(map[string]struct{}, len(favs))
	for _, id := range favs {
		favSet[id] = struct{}{}
	}

	txs, err := repo.ListUserTransactions(ctx, s.DB, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}

	fold := cases.Fold()
	index := make(map[string]int, len(txs))
	out := make([]PayeeItem, 0, len(txs))
	for _, t := range txs {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		_, fav := favSet[t.ID]
		key := fold.String(name)
		if i, seen := index[key]; seen {
			out[i].IsFavorite = out[i].IsFavorite || fav
			continue
		}
		index[key] = len(out)
		out = append(out, PayeeItem{
			PayeeID:    t.ID,
			Name:       name,
			Image:      t.Image,
			IsFavorite: fav,
		})
	}
	return out, nil
}

// normalizeCurrency upper-cases a valid ISO 4217 code and leaves anything
// else as stored.
func normalizeCurrency(code string) string {
	u, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return code
	}
	return u.String()
}

// roundForCurrency rounds amount to the standard minor-unit scale of code
// (2 for THB and USD, 0 for JPY). Unknown codes keep two decimals.
func roundForCurrency(amount decimal.Decimal, code string) decimal.Decimal {
	scale := 2
	if u, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(u)
	}
	return amount.Round(int32(scale))
}
