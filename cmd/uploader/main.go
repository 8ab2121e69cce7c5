package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samvad-hq/drawing-uploader/internal/app"
	"github.com/samvad-hq/drawing-uploader/internal/config"
	"github.com/samvad-hq/drawing-uploader/internal/domain"
	"github.com/samvad-hq/drawing-uploader/internal/logger"
	"github.com/samvad-hq/drawing-uploader/pkg/api"
	"github.com/spf13/pflag"
)

const usage = `usage: uploader <command> [flags]

commands:
  login     sign in with --username and --password
  register  create an account with --username, --password, --code [--email]
  upload    send --file for --product-code [--preview]
  preview   download a stored drawing from --url [--name]
  logout    forget the saved session
  whoami    show the server and signed-in user
`

var errUsage = errors.New("invalid usage")

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "uploader: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		os.Exit(2)
	}
	os.Exit(code)
}

// command holds a subcommand's flag set and the action run with the built runtime.
type command struct {
	flags  *pflag.FlagSet
	action func(ctx context.Context, u *app.Uploader) (result any, ok bool, err error)
}

// run executes one subcommand and writes its result as JSON to out. The returned
// code is 1 when the result reports a failure.
func run(args []string, out io.Writer) (int, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return 0, errUsage
	}
	name := args[0]
	cmd, err := newCommand(name)
	if err != nil {
		return 0, err
	}
	if err := cmd.flags.Parse(args[1:]); err != nil {
		return 0, fmt.Errorf("%w: %v", errUsage, err)
	}

	cfg, err := config.LoadWithFlags(cmd.flags)
	if err != nil {
		return 0, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return 0, fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("uploader starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uploader, err := app.NewUploader(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize uploader", "error", err)
		return 0, err
	}
	defer uploader.Close()

	result, ok, err := cmd.action(ctx, uploader)
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return 0, fmt.Errorf("write result: %w", err)
	}
	if !ok {
		return 1, nil
	}
	return 0, nil
}

func newCommand(name string) (*command, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addConfigFlags(fs)

	cmd := &command{flags: fs}
	switch name {
	case "login":
		username := fs.StringP("username", "u", "", "account name")
		password := fs.StringP("password", "p", "", "account password")
		cmd.action = func(ctx context.Context, u *app.Uploader) (any, bool, error) {
			res := u.Login(ctx, *username, *password)
			return res, res.Success, nil
		}
	case "register":
		username := fs.StringP("username", "u", "", "account name")
		password := fs.StringP("password", "p", "", "account password")
		email := fs.String("email", "", "optional e-mail address")
		code := fs.String("code", "", "activation code")
		cmd.action = func(ctx context.Context, u *app.Uploader) (any, bool, error) {
			res := u.Register(ctx, app.RegisterInput{
				Username:       *username,
				Password:       *password,
				Email:          *email,
				ActivationCode: *code,
			})
			return res, res.Success, nil
		}
	case "upload":
		productCode := fs.String("product-code", "", "product the drawing belongs to")
		file := fs.StringP("file", "f", "", "PDF to upload")
		preview := fs.Bool("preview", false, "download the stored copy after uploading")
		cmd.action = func(ctx context.Context, u *app.Uploader) (any, bool, error) {
			res := u.Upload(ctx, *productCode, *file)
			if !res.Success || !*preview {
				return res, res.Success, nil
			}
			prev := u.PreviewUpload(ctx, res.Data)
			return uploadWithPreview{Upload: res, Preview: prev}, prev.Success, nil
		}
	case "preview":
		url := fs.String("url", "", "pdf_url returned by an upload")
		saveAs := fs.String("name", "", "local file name, without extension")
		cmd.action = func(ctx context.Context, u *app.Uploader) (any, bool, error) {
			res := u.Preview(ctx, *url, *saveAs)
			return res, res.Success, nil
		}
	case "logout":
		cmd.action = func(ctx context.Context, u *app.Uploader) (any, bool, error) {
			if err := u.Logout(ctx); err != nil {
				return nil, false, err
			}
			return u.WhoAmI(), true, nil
		}
	case "whoami":
		cmd.action = func(_ context.Context, u *app.Uploader) (any, bool, error) {
			return u.WhoAmI(), true, nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
	return cmd, nil
}

// uploadWithPreview is printed by "upload --preview".
type uploadWithPreview struct {
	Upload  api.Result[domain.UploadedFile] `json:"upload"`
	Preview api.Result[string]              `json:"preview"`
}

// addConfigFlags registers flags that override config keys of the same name.
func addConfigFlags(fs *pflag.FlagSet) {
	fs.String("base-url", "", "server root, e.g. https://drawings.example.com")
	fs.String("server", "", "server profile id from the servers file")
	fs.String("servers-file", "", "YAML/JSON file of server profiles")
	fs.String("publishers-file", "", "YAML/JSON file of event publishers")
	fs.String("session-store", "", "bbolt or none")
	fs.String("session-path", "", "bbolt file holding the saved session")
	fs.String("download-dir", "", "directory for previews")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.Int64("request-timeout-seconds", 0, "per-request timeout")
}
