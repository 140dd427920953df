// Package repokit binds domain repositories to a transaction-scoped Queryer.
package repokit

import "github.com/maurolguin1/ig-moderation/internal/platform/store"

// Queryer is the read and write surface a repo runs against, pool or tx.
type Queryer = store.RowQuerier

// TxRunner runs a function inside a transaction.
type TxRunner = store.TxRunner
