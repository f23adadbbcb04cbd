package tracker

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/k3a/html2text"
)

// Build-time defaults, set with
// -ldflags "-X github.com/animalscode/actracker/pkg/tracker.TrackerAPIKey=..."
var (
	TrackerEndpoint      = "http://tracking.animalscode.com/v1/"
	TrackerAPIKey        = ""
	TrackerAPISecretKey  = ""
	TrackerPluginKey     = ""
	TrackerPluginVersion = ""
)

// UserAgent identifies the installation without revealing its URL.
func UserAgent(homeURL string) string {
	canonical := strings.TrimRight(homeURL, "/") + "/"
	sum := md5.Sum([]byte(canonical))
	return "AnimalsCodeTracker/" + hex.EncodeToString(sum[:]) + ";"
}

// stripTags reduces plugin header markup to its text. Links keep their
// inner text rather than the href.
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	return strings.TrimSpace(html2text.HTML2TextWithOptions(s, html2text.WithLinksInnerText()))
}

func stripTagsPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := stripTags(*s)
	return &v
}
