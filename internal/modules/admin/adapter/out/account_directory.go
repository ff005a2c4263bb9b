package out

import (
	"context"

	"kreosurvey/internal/modules/admin/domain"
	adminout "kreosurvey/internal/modules/admin/port/out"
)

// StaticAccountDirectory serves the admin accounts loaded from config.
type StaticAccountDirectory struct {
	accounts map[string]domain.Account
}

func NewStaticAccountDirectory(accounts []domain.Account) adminout.AccountDirectory {
	byEmail := make(map[string]domain.Account, len(accounts))
	for _, account := range accounts {
		email := domain.NormalizeEmail(account.Email)
		if email == "" {
			continue
		}
		account.Email = email
		byEmail[email] = account
	}
	return &StaticAccountDirectory{accounts: byEmail}
}

func (d *StaticAccountDirectory) Lookup(_ context.Context, email string) (domain.Account, bool, error) {
	account, ok := d.accounts[domain.NormalizeEmail(email)]
	return account, ok, nil
}
