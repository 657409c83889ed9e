package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotel-channel-manager/internal/domain/transaction"
)

// sqlTx は sqlx.Tx に transaction.Tx インターフェースを被せる
type sqlTx struct {
	*sqlx.Tx
}

func (t *sqlTx) Commit() error   { return t.Tx.Commit() }
func (t *sqlTx) Rollback() error { return t.Tx.Rollback() }

// TxManager は sqlx ベースのトランザクションマネージャー
// 在庫減算と予約作成を同一トランザクションに束ねるために使う
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager は新しい TxManager を作成する
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin は新しいトランザクションを開始する
// 分離レベルはデフォルト（READ COMMITTED）。直列化は分散ロックと
// バージョン条件付きUPDATEが担う
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &sqlTx{Tx: tx}, nil
}

// UnwrapTx は transaction.Tx から sqlx.Tx を取り出す
// リポジトリ実装で使用する
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if wrapped, ok := tx.(*sqlTx); ok {
		return wrapped.Tx
	}
	return nil
}

var _ transaction.Manager = (*TxManager)(nil)
