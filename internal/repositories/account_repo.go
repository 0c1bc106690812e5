package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/coreforge/bnetrest/internal/database"
	"github.com/coreforge/bnetrest/internal/models"
)

// pgxPool is the subset of *pgxpool.Pool the repository uses. pgxmock
// satisfies it, which keeps the repository testable without a live database.
type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AccountRepository handles all reads and writes against the account store.
type AccountRepository struct {
	pool pgxPool
}

func NewAccountRepository(pool pgxPool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetByEmail loads the credential row the login pipeline decides on. The ban
// flag is derived in the query so the decision always sees current state.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.BnetAccount, error) {
	query := `
		SELECT a.id, a.email, a.sha_pass_hash, a.failed_logins, a.login_ticket, a.login_ticket_expiry,
		       EXISTS (
		           SELECT 1 FROM battlenet_account_bans b
		           WHERE b.account_id = a.id AND b.unban_date > EXTRACT(EPOCH FROM NOW())::BIGINT
		       ) AS is_banned
		FROM battlenet_accounts a
		WHERE a.email = $1
	`

	var acct models.BnetAccount
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&acct.ID, &acct.Email, &acct.ShaPassHash, &acct.FailedLogins,
		&acct.LoginTicket, &acct.LoginTicketExpiry, &acct.IsBanned,
	)
	if err != nil {
		return nil, database.MapError(err)
	}

	return &acct, nil
}

// GetGameAccounts returns every game account bound to the given login ticket,
// with ban columns joined in where a ban row exists.
func (r *AccountRepository) GetGameAccounts(ctx context.Context, ticket string) ([]models.GameAccountRow, error) {
	query := `
		SELECT g.name, g.expansion, b.ban_date, b.unban_date, b.ban_reason
		FROM game_accounts g
		INNER JOIN battlenet_accounts a ON g.battlenet_account_id = a.id
		LEFT JOIN game_account_bans b ON b.game_account_id = g.id
		WHERE a.login_ticket = $1
		ORDER BY g.id
	`

	rows, err := r.pool.Query(ctx, query, ticket)
	if err != nil {
		return nil, database.MapError(err)
	}
	defer rows.Close()

	accounts := make([]models.GameAccountRow, 0)
	for rows.Next() {
		var row models.GameAccountRow
		if err := rows.Scan(&row.Name, &row.Expansion, &row.BanDate, &row.UnbanDate, &row.BanReason); err != nil {
			return nil, database.MapError(err)
		}
		accounts = append(accounts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err)
	}

	return accounts, nil
}

// GetTicketExpiry returns the stored expiry for a ticket, or ErrNotFound when
// no account holds it.
func (r *AccountRepository) GetTicketExpiry(ctx context.Context, ticket string) (int64, error) {
	query := `SELECT login_ticket_expiry FROM battlenet_accounts WHERE login_ticket = $1`

	var expiry int64
	if err := r.pool.QueryRow(ctx, query, ticket).Scan(&expiry); err != nil {
		return 0, database.MapError(err)
	}
	return expiry, nil
}

// UpdateLoginTicket persists a (possibly reused) ticket and its new expiry on
// a successful login.
func (r *AccountRepository) UpdateLoginTicket(ctx context.Context, accountID uint32, ticket string, expiry int64) error {
	query := `UPDATE battlenet_accounts SET login_ticket = $1, login_ticket_expiry = $2 WHERE id = $3`

	if _, err := r.pool.Exec(ctx, query, ticket, expiry, accountID); err != nil {
		return database.MapError(err)
	}
	return nil
}

// UpdateTicketExpiry extends a still-valid ticket on refresh. The ticket
// value itself never changes here.
func (r *AccountRepository) UpdateTicketExpiry(ctx context.Context, ticket string, expiry int64) error {
	query := `UPDATE battlenet_accounts SET login_ticket_expiry = $1 WHERE login_ticket = $2`

	if _, err := r.pool.Exec(ctx, query, expiry, ticket); err != nil {
		return database.MapError(err)
	}
	return nil
}

// ApplyFailedLogin applies one failed-attempt update as a single transaction:
// the counter increment and, when the attempt crossed the threshold, the ban
// row plus the counter reset. Either all effects land or none do.
func (r *AccountRepository) ApplyFailedLogin(ctx context.Context, upd models.FailedLoginUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return database.MapError(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE battlenet_accounts SET failed_logins = failed_logins + 1 WHERE id = $1`,
		upd.AccountID,
	); err != nil {
		return database.MapError(err)
	}

	if upd.ImposeBan {
		banSeconds := int64(upd.BanDuration.Seconds())

		if upd.BanMode == models.BanModeAccount {
			_, err = tx.Exec(ctx, `
				INSERT INTO battlenet_account_bans (account_id, ban_date, unban_date, ban_reason)
				VALUES ($1, EXTRACT(EPOCH FROM NOW())::BIGINT, EXTRACT(EPOCH FROM NOW())::BIGINT + $2, 'Failed login auto-ban')`,
				upd.AccountID, banSeconds,
			)
		} else {
			_, err = tx.Exec(ctx, `
				INSERT INTO ip_bans (ip, ban_date, unban_date, ban_reason)
				VALUES ($1, EXTRACT(EPOCH FROM NOW())::BIGINT, EXTRACT(EPOCH FROM NOW())::BIGINT + $2, 'Failed login auto-ban')`,
				upd.IPAddress, banSeconds,
			)
		}
		if err != nil {
			return database.MapError(err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE battlenet_accounts SET failed_logins = 0 WHERE id = $1`,
			upd.AccountID,
		); err != nil {
			return database.MapError(err)
		}
	}

	return tx.Commit(ctx)
}

// CreateAccount inserts a battle.net account with an already-derived digest.
// Used by the startup bootstrap; login never creates accounts.
func (r *AccountRepository) CreateAccount(ctx context.Context, email, shaPassHash string) (uint32, error) {
	query := `
		INSERT INTO battlenet_accounts (email, sha_pass_hash)
		VALUES ($1, $2)
		RETURNING id
	`

	var id uint32
	if err := r.pool.QueryRow(ctx, query, email, shaPassHash).Scan(&id); err != nil {
		return 0, database.MapError(err)
	}
	return id, nil
}

// DeleteExpiredBans drops ban rows whose unban time has passed. Called by the
// background sweeper; active bans are never touched.
func (r *AccountRepository) DeleteExpiredBans(ctx context.Context) (int64, error) {
	var deleted int64

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM ip_bans WHERE unban_date <= EXTRACT(EPOCH FROM NOW())::BIGINT`)
	if err != nil {
		return 0, database.MapError(err)
	}
	deleted += tag.RowsAffected()

	tag, err = r.pool.Exec(ctx,
		`DELETE FROM battlenet_account_bans WHERE unban_date <= EXTRACT(EPOCH FROM NOW())::BIGINT`)
	if err != nil {
		return deleted, database.MapError(err)
	}
	deleted += tag.RowsAffected()

	return deleted, nil
}
