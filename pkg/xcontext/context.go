package xcontext

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/wtfpad/backend/config"
	"github.com/wtfpad/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey     struct{}
	loggerKey      struct{}
	dbKey          struct{}
	dbTxKey        struct{}
	txOwnerKey     struct{}
	txHooksKey     struct{}
	requestUserKey struct{}
	httpRequestKey struct{}
	httpWriterKey  struct{}
	errorKey       struct{}
	responseKey    struct{}
	startTimeKey   struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		return config.Configs{}
	}

	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// Logger never returns nil. A context without a logger gets a silent one.
func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok || l == nil {
		return logger.NewNopLogger()
	}

	return l
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the running transaction if there is one.
func DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}

	return db.WithContext(ctx)
}

// txHooks belong to the outermost transaction.
type txHooks struct {
	mutex sync.Mutex
	fns   []func(context.Context)
}

// WithDBTransaction begins a transaction. Nested calls join the outer one and
// only the outermost commit or rollback takes effect.
func WithDBTransaction(ctx context.Context) context.Context {
	if tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB); ok && tx != nil {
		return context.WithValue(ctx, txOwnerKey{}, false)
	}

	ctx = context.WithValue(ctx, dbTxKey{}, DB(ctx).Begin())
	ctx = context.WithValue(ctx, txHooksKey{}, &txHooks{})
	return context.WithValue(ctx, txOwnerKey{}, true)
}

// AfterCommit runs fn once the outermost transaction of ctx commits, or right
// away when ctx has no transaction. fn is dropped on rollback. It receives a
// context without the transaction.
func AfterCommit(ctx context.Context, fn func(context.Context)) {
	hooks, ok := ctx.Value(txHooksKey{}).(*txHooks)
	if !ok || hooks == nil {
		fn(ctx)
		return
	}

	hooks.mutex.Lock()
	hooks.fns = append(hooks.fns, fn)
	hooks.mutex.Unlock()
}

func WithCommitDBTransaction(ctx context.Context) context.Context {
	if owner, _ := ctx.Value(txOwnerKey{}).(bool); !owner {
		return ctx
	}

	tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB)
	if !ok || tx == nil {
		return ctx
	}

	if err := tx.Commit().Error; err != nil {
		Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return ctx
	}

	hooks, _ := ctx.Value(txHooksKey{}).(*txHooks)
	if hooks == nil {
		return ctx
	}

	hooks.mutex.Lock()
	fns := hooks.fns
	hooks.fns = nil
	hooks.mutex.Unlock()

	committed := withoutTransaction(ctx)
	for _, fn := range fns {
		fn(committed)
	}

	return ctx
}

func WithRollbackDBTransaction(ctx context.Context) context.Context {
	if owner, _ := ctx.Value(txOwnerKey{}).(bool); !owner {
		return ctx
	}

	if tx, ok := ctx.Value(dbTxKey{}).(*gorm.DB); ok && tx != nil {
		// No-op after a commit.
		tx.Rollback()
	}

	if hooks, _ := ctx.Value(txHooksKey{}).(*txHooks); hooks != nil {
		hooks.mutex.Lock()
		hooks.fns = nil
		hooks.mutex.Unlock()
	}

	return ctx
}

func withoutTransaction(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, dbTxKey{}, (*gorm.DB)(nil))
	ctx = context.WithValue(ctx, txHooksKey{}, (*txHooks)(nil))
	return context.WithValue(ctx, txOwnerKey{}, false)
}

func WithRequestUserID(ctx context.Context, wallet string) context.Context {
	return context.WithValue(ctx, requestUserKey{}, wallet)
}

// RequestUserID is the wallet address extracted from the access token.
func RequestUserID(ctx context.Context) string {
	id, _ := ctx.Value(requestUserKey{}).(string)
	return id
}

func WithHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, req)
}

func HTTPRequest(ctx context.Context) *http.Request {
	req, _ := ctx.Value(httpRequestKey{}).(*http.Request)
	return req
}

func WithHTTPWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, httpWriterKey{}, w)
}

func HTTPWriter(ctx context.Context) http.ResponseWriter {
	w, _ := ctx.Value(httpWriterKey{}).(http.ResponseWriter)
	return w
}

func WithError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, errorKey{}, err)
}

func Error(ctx context.Context) error {
	err, _ := ctx.Value(errorKey{}).(error)
	return err
}

func WithResponse(ctx context.Context, resp any) context.Context {
	return context.WithValue(ctx, responseKey{}, resp)
}

func Response(ctx context.Context) any {
	return ctx.Value(responseKey{})
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func StartTime(ctx context.Context) time.Time {
	t, _ := ctx.Value(startTimeKey{}).(time.Time)
	return t
}
