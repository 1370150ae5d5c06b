package db

import "github.com/zrax/moulars/internal/moulerr"

func errUnknownBackend(kind string) error {
	return moulerr.New(moulerr.Protocol, "db.Open: unknown backend kind "+kind, nil)
}

// errNotFound builds the error returned by lookup methods when no matching row
// exists. Callers should compare with moulerr.Is(err, moulerr.NotFound).
func errNotFound(op string) error {
	return moulerr.New(moulerr.NotFound, op, nil)
}

func errConflict(op string) error {
	return moulerr.New(moulerr.Conflict, op, nil)
}
