// Command authzdemo is a small demonstration harness around the
// authorization core: it loads a policy from a configurable policystore
// driver, serves a POST /evaluate endpoint that runs one message through
// internal/authz.Checker, and offers a -once CLI mode for scripted use.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openalljoyn/authzcore/internal/authmeta"
	"github.com/openalljoyn/authzcore/internal/authmetacache"
	"github.com/openalljoyn/authzcore/internal/authz"
	"github.com/openalljoyn/authzcore/internal/msgdesc"
	"github.com/openalljoyn/authzcore/internal/peerstate"
	"github.com/openalljoyn/authzcore/internal/permerr"
	"github.com/openalljoyn/authzcore/internal/permpolicy"
	"github.com/openalljoyn/authzcore/internal/policystore"

	// Register policystore and authmetacache drivers (init() side effect).
	_ "github.com/openalljoyn/authzcore/internal/authmetacache/loader"
	_ "github.com/openalljoyn/authzcore/internal/policystore/loader"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file (optional)")
	listenAddr := flag.String("listen", "", "Listen address (overrides config)")

	once := flag.Bool("once", false, "Evaluate a single message from flags and exit instead of serving HTTP")
	onceGUID := flag.String("guid", "anon", "Peer guid for -once mode")
	onceDirection := flag.String("direction", "incoming", "Message direction for -once mode: incoming or outgoing")
	onceKind := flag.String("kind", "method", "Message kind for -once mode: method, signal, or property")
	onceObjPath := flag.String("obj-path", "/", "Object path for -once mode")
	onceIface := flag.String("iface", "", "Interface name for -once mode")
	onceMember := flag.String("member", "", "Member name for -once mode")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	logger := newLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	checker, err := buildChecker(cfg, logger)
	if err != nil {
		logger.Error("failed to build authorization checker", "error", err)
		os.Exit(1)
	}

	if *once {
		desc, err := parseDesc(*onceDirection, *onceKind, *onceObjPath, *onceIface, *onceMember)
		if err != nil {
			fmt.Fprintln(os.Stderr, "parse message:", err)
			os.Exit(2)
		}
		err = checker.Check(context.Background(), desc, *onceGUID, nil)
		if err == nil {
			fmt.Println("Ok")
			return
		}
		fmt.Println(classifyForDisplay(err))
		os.Exit(1)
	}

	serve(cfg, logger, checker)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// buildChecker wires policystore -> permpolicy.Snapshot, a peer registry, a
// cached auth-metadata provider, and the orchestrator itself.
func buildChecker(cfg *Config, logger *slog.Logger) (*authz.Checker, error) {
	driver, err := policystore.New(&policystore.DriverConfig{
		Driver:  cfg.PolicyStore.Driver,
		DataDir: cfg.DataDir,
		Mirror:  policystore.MirrorConfig{ExportPath: stringField(cfg.PolicyStore.Mirror, "export_path")},
	})
	if err != nil {
		return nil, fmt.Errorf("policystore.New: %w", err)
	}

	ctx := context.Background()
	if err := driver.Init(ctx); err != nil {
		return nil, fmt.Errorf("policystore Init: %w", err)
	}

	policy, err := driver.Load(ctx)
	if errors.Is(err, policystore.ErrNotFound) {
		policy = permpolicy.Empty()
	} else if err != nil {
		return nil, fmt.Errorf("policystore Load: %w", err)
	}
	logger.Info("loaded policy", "version", policy.Version, "acls", len(policy.Acls), "installed", policy.Installed)

	cache, err := authmetacache.New(cfg.AuthCache.Driver, cfg.AuthCache.Config)
	if err != nil {
		return nil, fmt.Errorf("authmetacache.New: %w", err)
	}

	upstream := authmeta.NewStaticStore(false)
	provider := authmetacache.NewCachedProvider(upstream, cache, 5*time.Minute)

	return &authz.Checker{
		Policy:       permpolicy.NewSnapshot(policy),
		Peers:        peerstate.NewRegistry(),
		AuthMeta:     provider,
		AdminGroupID: cfg.AdminGroupID,
		Log:          logger,
	}, nil
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, _ := m[key].(string)
	return v
}

// evaluateRequest is the POST /evaluate JSON body.
type evaluateRequest struct {
	GUID          string `json:"guid"`
	Direction     string `json:"direction"`
	Kind          string `json:"kind"`
	ObjPath       string `json:"obj_path"`
	InterfaceName string `json:"interface_name"`
	MemberName    string `json:"member_name"`
	Args          []string `json:"args,omitempty"`
}

type evaluateResponse struct {
	Allowed    bool   `json:"allowed"`
	ReasonCode string `json:"reason_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

func serve(cfg *Config, logger *slog.Logger, checker *authz.Checker) {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Post("/evaluate", func(w http.ResponseWriter, req *http.Request) {
		var body evaluateRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
			return
		}
		desc, err := parseDesc(body.Direction, body.Kind, body.ObjPath, body.InterfaceName, body.MemberName)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		guid := body.GUID
		if guid == "" {
			guid = "anon"
		}

		checkErr := checker.Check(req.Context(), desc, guid, msgdesc.PropertyArgs(body.Args))
		resp := evaluateResponse{Allowed: checkErr == nil}
		if checkErr != nil {
			var classified *permerr.Classified
			if errors.As(checkErr, &classified) {
				resp.ReasonCode = classified.ReasonCode
			}
			resp.Error = checkErr.Error()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("authzdemo listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("authzdemo stopped")
}

func parseDesc(direction, kind, objPath, iface, member string) (msgdesc.MsgDesc, error) {
	var dir msgdesc.Direction
	switch direction {
	case "incoming", "":
		dir = msgdesc.Incoming
	case "outgoing":
		dir = msgdesc.Outgoing
	default:
		return msgdesc.MsgDesc{}, fmt.Errorf("unknown direction %q", direction)
	}

	var k msgdesc.Kind
	switch kind {
	case "method", "":
		k = msgdesc.MethodCall
	case "signal":
		k = msgdesc.Signal
	case "property":
		k = msgdesc.Property
	case "other":
		k = msgdesc.Other
	default:
		return msgdesc.MsgDesc{}, fmt.Errorf("unknown kind %q", kind)
	}

	return msgdesc.MsgDesc{
		Direction:     dir,
		Kind:          k,
		ObjPath:       objPath,
		InterfaceName: iface,
		MemberName:    member,
	}, nil
}

func classifyForDisplay(err error) string {
	var classified *permerr.Classified
	if errors.As(err, &classified) {
		return fmt.Sprintf("Deny (%s): %s", classified.ReasonCode, classified.Message)
	}
	return err.Error()
}
