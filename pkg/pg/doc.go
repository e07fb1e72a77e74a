// Package pg opens pgx connection pools, applies the embedded goose
// migrations (users and sessions tables) and classifies driver errors.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
package pg
