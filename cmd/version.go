package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/nulzo/openroute/internal/cli"
	"go.uber.org/zap"
)

// AppVersion is overridden at build time with -ldflags "-X".
var AppVersion = "v0.1.0"

const releaseURL = "https://api.github.com/repos/nulzo/openroute/releases/latest"

type GitHubRelease struct {
	TagName string `json:"tag_name"`
}

// LatestRelease fetches the tag of the latest published release.
func LatestRelease(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release lookup returned %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	return release.TagName, nil
}

// IsOutdated reports whether current sorts before latest.
func IsOutdated(current, latest string) (bool, error) {
	cur, err := version.NewVersion(current)
	if err != nil {
		return false, err
	}
	lat, err := version.NewVersion(latest)
	if err != nil {
		return false, err
	}
	return cur.LessThan(lat), nil
}

// CheckForUpdates logs a warning when a newer release exists. Lookup
// failures are only logged at debug level.
func CheckForUpdates(ctx context.Context, logger *zap.Logger) {
	client := &http.Client{Timeout: 2 * time.Second}

	latest, err := LatestRelease(ctx, client, releaseURL)
	if err != nil {
		logger.Debug("Update check skipped", zap.Error(err))
		return
	}

	outdated, err := IsOutdated(AppVersion, latest)
	if err != nil {
		logger.Debug("Update check skipped", zap.Error(err))
		return
	}

	if outdated {
		logger.Warn(fmt.Sprintf("%s %s", cli.WarningSign(),
			cli.Stylize("You are running an outdated version", cli.Yellow)),
			zap.String("current", AppVersion),
			zap.String("latest", latest))
	}
}
