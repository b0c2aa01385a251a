package engine

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/use-agent/pagegrab/models"
)

// serverlessFlags are added when running the managed Chromium build; they
// keep a single headless process small enough for constrained containers.
var serverlessFlags = []flags.Flag{
	"hide-scrollbars",
	"incognito",
	"disable-gpu",
	"disable-dev-shm-usage",
	"no-zygote",
	"single-process",
	"no-first-run",
	"mute-audio",
}

// BinResolver returns the path of a browser executable.
type BinResolver func() (string, error)

// managedBrowser downloads (on first use) and returns rod's pinned Chromium
// revision.
func managedBrowser() (string, error) {
	return launcher.NewBrowser().Get()
}

// newLauncher builds the launcher for one render. A configured local
// executable keeps rod's default arguments; otherwise the managed build is
// launched headless and sandbox-free with serverlessFlags.
func newLauncher(ctx context.Context, localBin string, resolve BinResolver) (*launcher.Launcher, error) {
	l := launcher.New().Context(ctx)
	if localBin != "" {
		return l.Bin(localBin), nil
	}

	bin, err := resolve()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserLaunch, "resolve browser binary", err)
	}
	l = l.Bin(bin).Headless(true).NoSandbox(true)
	for _, f := range serverlessFlags {
		l = l.Set(f)
	}
	return l, nil
}

// browserSession owns one launched browser process. Close is safe to call on
// a partially opened session and must run on every exit path.
type browserSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser

	// launched is set once the process reported its control URL. Only then
	// does the launcher's exit channel get closed, so Cleanup may wait on it.
	launched bool
}

// openSession launches the process and connects to it. On error everything
// already started is torn down before returning.
func openSession(ctx context.Context, l *launcher.Launcher) (*browserSession, error) {
	s := &browserSession{launcher: l}

	controlURL, err := l.Launch()
	if err != nil {
		s.Close()
		return nil, models.NewScrapeError(models.ErrCodeBrowserLaunch, "launch browser", err)
	}
	s.launched = true

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		s.Close()
		return nil, categorizeError(err, models.ErrCodeBrowserLaunch, "connect to browser")
	}
	s.browser = browser
	return s, nil
}

// Close disconnects from and kills the browser, then removes its profile
// directory. It never blocks on a process that failed to start.
func (s *browserSession) Close() {
	if s == nil {
		return
	}
	if s.browser != nil {
		// The request context may already be done; closing must not depend on it.
		if err := s.browser.Context(context.Background()).Close(); err != nil {
			slog.Debug("rod_engine: browser close failed", "error", err)
		}
	}
	if s.launcher == nil {
		return
	}
	s.launcher.Kill()
	if s.launched {
		s.launcher.Cleanup()
		return
	}
	if dir := s.launcher.Get(flags.UserDataDir); dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			slog.Debug("rod_engine: profile cleanup failed", "dir", dir, "error", err)
		}
	}
}
