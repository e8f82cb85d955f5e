// Package update checks whether a newer release of setups-sync is
// available and downloads it. A failed check is never fatal: the caller
// treats it as "no update" and the local reconciliation proceeds unaffected.
package update

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/afero"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// DefaultManifestURL points at the release manifest for the main branch.
const DefaultManifestURL = "https://raw.githubusercontent.com/nishizumi-maho/" +
	"nishizumi-setups-sync/main/release.json"

var httpClient = http.Client{Timeout: 10 * time.Second}

// A Release describes the latest published version.
type Release struct {
	Version     string `json:"version"`
	DownloadURL string `json:"downloadUrl"`
}

// Check fetches the release manifest and reports whether it is newer than
// `current`. An unparseable local version (e.g. a development build) is
// treated as older than any release.
func Check(manifestURL, current string) (Release, bool, error) {
	resp, err := httpClient.Get(manifestURL)
	if err != nil {
		return Release{}, false, errors.WithContext(err, "fetch manifest")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, false, errors.New(fmt.Sprintf(
			"manifest request failed with status %d", resp.StatusCode))
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return Release{}, false, errors.WithContext(err, "decode manifest")
	}

	remote, err := goversion.NewVersion(release.Version)
	if err != nil {
		return Release{}, false, errors.WithContext(err, "parse remote version")
	}

	local, err := goversion.NewVersion(current)
	if err != nil {
		return release, true, nil
	}
	return release, remote.GreaterThan(local), nil
}

// Download streams the release at `url` to `dest`, marked executable.
func Download(url, dest string) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return errors.WithContext(err, "fetch release")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New(fmt.Sprintf("download failed with status %d", resp.StatusCode))
	}

	out, err := fs.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return errors.WithContext(err, "create file")
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return errors.WithContext(err, "write release")
	}
	return out.Close()
}
