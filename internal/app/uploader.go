package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samvad-hq/drawing-uploader/internal/config"
	"github.com/samvad-hq/drawing-uploader/internal/domain"
	"github.com/samvad-hq/drawing-uploader/internal/logger"
	"github.com/samvad-hq/drawing-uploader/internal/session"
	"github.com/samvad-hq/drawing-uploader/internal/storage"
	"github.com/samvad-hq/drawing-uploader/pkg/api"
	"github.com/samvad-hq/drawing-uploader/pkg/httpclient"
	"github.com/samvad-hq/drawing-uploader/pkg/publishers"
	"github.com/samvad-hq/drawing-uploader/pkg/servers"
)

// Messages for checks made before any request is sent.
const (
	MsgCredentialsRequired = "enter username and password"
	MsgRegisterIncomplete  = "username, password and activation code are required"
	MsgLoginRequired       = "please log in first"
	MsgUploadIncomplete    = "enter a product code and choose a PDF"
)

// Uploader is the front-end runtime. It owns the session context, its persisted
// copy, the API client and the optional event fan-out, and applies the local
// checks the mobile screens made before calling the server.
type Uploader struct {
	cfg    *config.Config
	sess   *session.Context
	client *api.Client
	store  storage.Store
	fanout *publishers.Fanout
	log    logger.Logger
}

// RegisterInput carries the register form.
type RegisterInput struct {
	Username       string
	Password       string
	Email          string
	ActivationCode string
}

// Identity describes who the runtime would act as.
type Identity struct {
	BaseURL       string          `json:"base_url"`
	Authenticated bool            `json:"authenticated"`
	User          json.RawMessage `json:"user,omitempty"`
}

// NewUploader builds the runtime from config and restores any persisted session.
func NewUploader(ctx context.Context, cfg *config.Config, log logger.Logger) (*Uploader, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	baseURL, err := servers.ResolveBaseURL(cfg.ServersFile, cfg.Server, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("resolve server: %w", err)
	}
	sess := session.New(baseURL)
	log.InfoObj("server resolved", "server_meta", map[string]any{
		"server":   cfg.Server,
		"base_url": sess.BaseURL(),
	})

	store, err := storage.NewStore(cfg.SessionStore, cfg.SessionPath, storage.Options{SessionTTL: cfg.SessionTTL})
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}
	restored, err := sess.Restore(store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	log.InfoObj("session store initialized", "storage_config", map[string]any{
		"type":             cfg.SessionStore,
		"path":             cfg.SessionPath,
		"ttl_seconds":      int(cfg.SessionTTL.Seconds()),
		"session_restored": restored,
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	transport := httpclient.NewRestyClient(cfg.RequestTimeout)

	return &Uploader{
		cfg:    cfg,
		sess:   sess,
		client: api.New(sess, transport, log),
		store:  store,
		fanout: fanout,
		log:    log,
	}, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return publishers.NewFanout(nil), nil
	}
	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Session exposes the live session context.
func (u *Uploader) Session() *session.Context { return u.sess }

// Login signs in and, on success, stores the credentials in memory and on disk.
func (u *Uploader) Login(ctx context.Context, username, password string) api.Result[domain.Credentials] {
	if strings.TrimSpace(username) == "" || password == "" {
		return api.Result[domain.Credentials]{Message: MsgCredentialsRequired}
	}
	res := u.client.Login(ctx, username, password)
	if res.Success {
		u.signIn(ctx, publishers.EventLogin, res.Data)
	}
	return res
}

// Register creates an account with an activation code and signs in with it.
func (u *Uploader) Register(ctx context.Context, in RegisterInput) api.Result[domain.Credentials] {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" || strings.TrimSpace(in.ActivationCode) == "" {
		return api.Result[domain.Credentials]{Message: MsgRegisterIncomplete}
	}
	res := u.client.Register(ctx, api.RegisterRequest{
		Username:       in.Username,
		Password:       in.Password,
		Email:          strings.TrimSpace(in.Email),
		ActivationCode: strings.TrimSpace(in.ActivationCode),
	})
	if res.Success {
		u.signIn(ctx, publishers.EventRegister, res.Data)
	}
	return res
}

func (u *Uploader) signIn(ctx context.Context, eventType string, creds domain.Credentials) {
	if err := u.sess.SetCredentials(creds.Token, creds.User); err != nil {
		u.log.ErrorObj("session update failed", "error", err)
		return
	}
	if err := u.store.SaveSession(creds.Token, creds.User); err != nil {
		u.log.ErrorObj("session persist failed", "error", err)
	}
	u.publish(ctx, publishers.NewEvent(eventType, u.sess.BaseURL(), creds.User))
}

// Upload sends a drawing as the signed-in user.
func (u *Uploader) Upload(ctx context.Context, productCode, filePath string) api.Result[domain.UploadedFile] {
	if !u.sess.Authenticated() {
		return api.Result[domain.UploadedFile]{Message: MsgLoginRequired}
	}
	productCode = strings.TrimSpace(productCode)
	if productCode == "" || strings.TrimSpace(filePath) == "" {
		return api.Result[domain.UploadedFile]{Message: MsgUploadIncomplete}
	}

	creds := u.sess.Snapshot()
	res := u.client.UploadFile(ctx, api.UploadRequest{
		Token:       creds.Token,
		ProductCode: productCode,
		FilePath:    filePath,
	})
	if res.Success {
		u.log.InfoObj("drawing uploaded", "upload", res.Data)
		u.publish(ctx, publishers.NewUploadEvent(u.sess.BaseURL(), creds.User, res.Data))
	}
	return res
}

// Preview downloads a stored drawing into the download directory as <name>.pdf.
func (u *Uploader) Preview(ctx context.Context, pdfURL, name string) api.Result[string] {
	dest := filepath.Join(u.cfg.DownloadDir, previewFileName(name))
	return u.client.DownloadFile(ctx, api.DownloadRequest{
		URL:   pdfURL,
		Token: u.sess.Token(),
		Dest:  dest,
	})
}

// PreviewUpload downloads the drawing an upload just stored.
func (u *Uploader) PreviewUpload(ctx context.Context, file domain.UploadedFile) api.Result[string] {
	name := file.ProductCode
	if name == "" {
		name = strconv.FormatInt(file.ID, 10)
	}
	return u.Preview(ctx, file.PublicURL, name)
}

func previewFileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSuffix(name, ".pdf")
	if name == "" || name == "." || name == ".." {
		name = "preview"
	}
	return name + ".pdf"
}

// Logout clears the session in memory and on disk.
func (u *Uploader) Logout(ctx context.Context) error {
	user := u.sess.User()
	wasSignedIn := u.sess.Authenticated()
	u.sess.Clear()
	if err := u.store.ClearSession(); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	if wasSignedIn {
		u.publish(ctx, publishers.NewEvent(publishers.EventLogout, u.sess.BaseURL(), user))
	}
	return nil
}

// WhoAmI reports the server in use and the signed-in user, if any.
func (u *Uploader) WhoAmI() Identity {
	creds := u.sess.Snapshot()
	return Identity{
		BaseURL:       u.sess.BaseURL(),
		Authenticated: creds.Token != "",
		User:          creds.User,
	}
}

// publish fans out evt. Delivery failures are logged and never change the
// result of the operation that produced the event.
func (u *Uploader) publish(ctx context.Context, evt publishers.Event) {
	if u.fanout.Size() == 0 {
		return
	}
	delivered, err := u.fanout.Publish(ctx, evt)
	if err != nil {
		u.log.WarnObj("event publish failed", "publish_error", map[string]any{
			"event_type": evt.Type,
			"delivered":  delivered,
			"error":      err.Error(),
		})
		return
	}
	u.log.DebugObj("event published", "publish_meta", map[string]any{
		"event_type": evt.Type,
		"event_id":   evt.ID,
		"delivered":  delivered,
	})
}

// Close releases the session store and publishers.
func (u *Uploader) Close() error {
	if u == nil {
		return nil
	}
	var errs []error
	if u.fanout != nil {
		if err := u.fanout.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if u.store != nil {
		if err := u.store.Close(); err != nil {
			u.log.ErrorObj("storage close failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
