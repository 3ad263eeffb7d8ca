package router

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/wtfpad/backend/config"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/logger"
	"github.com/wtfpad/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// StreamFunc owns the response writer until it returns.
type StreamFunc func(ctx context.Context, w http.ResponseWriter) error

// MiddlewareFunc runs before (or after) the handler. A returned error stops
// the chain and is written as the response.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc always runs, after the response has been written.
type CloserFunc func(ctx context.Context)

type Router struct {
	engine *gin.Engine

	db       *gorm.DB
	cfg      config.Configs
	logger   logger.Logger
	validate *validator.Validate

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{
		engine:   engine,
		db:       db,
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
	}
}

// Branch returns a router sharing the engine, with a copy of the current
// middlewares. Middlewares added to the branch do not leak to the parent.
func (r *Router) Branch() *Router {
	clone := *r
	clone.befores = append([]MiddlewareFunc(nil), r.befores...)
	clone.afters = append([]MiddlewareFunc(nil), r.afters...)
	clone.closers = append([]CloserFunc(nil), r.closers...)
	return &clone
}

func (r *Router) Before(middleware ...MiddlewareFunc) {
	r.befores = append(r.befores, middleware...)
}

func (r *Router) After(middleware ...MiddlewareFunc) {
	r.afters = append(r.afters, middleware...)
}

func (r *Router) AddCloser(closer ...CloserFunc) {
	r.closers = append(r.closers, closer...)
}

func (r *Router) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   r.cfg.ApiServer.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r.engine)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.GET(pattern, wrapHandler(r, handler, func(c *gin.Context, req *Request) error {
		return c.ShouldBindQuery(req)
	}))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.POST(pattern, wrapHandler(r, handler, func(c *gin.Context, req *Request) error {
		err := c.ShouldBindJSON(req)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}))
}

// Stream registers a long-lived GET endpoint, such as server-sent events. Only
// the before middlewares and closers apply.
func Stream(r *Router, pattern string, handler StreamFunc) {
	befores, closers := r.befores, r.closers
	r.engine.GET(pattern, func(c *gin.Context) {
		ctx := r.newContext(c)
		defer func() { runClosers(ctx, closers) }()

		for _, m := range befores {
			next, err := m(ctx)
			if err != nil {
				ctx = xcontext.WithError(ctx, err)
				writeResponse(ctx, c.Writer, nil, err)
				return
			}
			ctx = next
		}

		if err := handler(ctx, c.Writer); err != nil {
			ctx = xcontext.WithError(ctx, err)
			if !c.Writer.Written() {
				writeResponse(ctx, c.Writer, nil, err)
			}
		}
	})
}

func (r *Router) newContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	ctx = xcontext.WithConfigs(ctx, r.cfg)
	ctx = xcontext.WithLogger(ctx, r.logger)
	ctx = xcontext.WithDB(ctx, r.db)
	ctx = xcontext.WithHTTPRequest(ctx, c.Request)
	ctx = xcontext.WithHTTPWriter(ctx, c.Writer)
	return ctx
}

func wrapHandler[Request, Response any](
	r *Router,
	handler HandlerFunc[Request, Response],
	bind func(*gin.Context, *Request) error,
) gin.HandlerFunc {
	befores, afters, closers := r.befores, r.afters, r.closers
	return func(c *gin.Context) {
		ctx := r.newContext(c)
		defer func() { runClosers(ctx, closers) }()

		resp, err := func() (*Response, error) {
			for _, m := range befores {
				next, err := m(ctx)
				if err != nil {
					return nil, err
				}
				ctx = next
			}

			req := new(Request)
			if err := bind(c, req); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind request: %v", err)
				return nil, errorx.New(errorx.BadRequest, "Invalid request format")
			}

			if err := r.validate.Struct(req); err != nil {
				var invalid *validator.InvalidValidationError
				if !errors.As(err, &invalid) {
					return nil, errorx.New(errorx.BadRequest, "Invalid request: %v", err)
				}
			}

			resp, err := handler(ctx, req)
			if err != nil {
				return nil, err
			}

			ctx = xcontext.WithResponse(ctx, resp)
			for _, m := range afters {
				next, err := m(ctx)
				if err != nil {
					return nil, err
				}
				ctx = next
			}

			return resp, nil
		}()

		if err != nil {
			ctx = xcontext.WithError(ctx, err)
		}

		writeResponse(ctx, c.Writer, resp, err)
	}
}

func runClosers(ctx context.Context, closers []CloserFunc) {
	for _, closer := range closers {
		closer(ctx)
	}
}
