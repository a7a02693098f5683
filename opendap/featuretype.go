// Package opendap resolves the CF featureType of a dataset by reading the
// DAS (dataset attribute structure) document its OPeNDAP access url serves.
package opendap

import (
	"bufio"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/metsearch/mdk"
)

// FetchFeatureType retrieves the DAS for accessURL and returns the value of
// its featureType attribute. The attribute appears in the global section as
//
//	String featureType "timeSeries";
//
// An empty string with nil error means the DAS carries no featureType.
func FetchFeatureType(client *http.Client, accessURL string) (string, error) {
	resp, err := client.Get(accessURL + ".das")
	if err != nil {
		return "", errors.Wrap(err, "fetching DAS")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("fetching DAS: status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "featureType") {
			continue
		}
		parts := strings.SplitN(line, `"`, 3)
		if len(parts) == 3 {
			return parts[1], nil
		}
	}
	return "", errors.Wrap(scanner.Err(), "scanning DAS")
}

// Typer binds an http timeout into an mdk.FeatureTyper.
func Typer(timeout time.Duration) mdk.FeatureTyper {
	client := &http.Client{Timeout: timeout}
	return func(accessURL string) (string, error) {
		return FetchFeatureType(client, accessURL)
	}
}
