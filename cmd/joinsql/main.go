// joinsql renders query documents to SQL and derives join trees from live
// database schemas.
//
//	joinsql render queries/*.yaml
//	joinsql watch queries/cars.yaml
//	joinsql convert cars.yaml cars.msgpack
//	joinsql inspect --root car --path engine --path owner --run
//
// Configuration is read from a .env file, JOINSQL_* environment variables
// and flags, in increasing order of precedence.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
