package server

import (
	"sync"

	"github.com/ua-parser/uap-go/uaparser"
)

// userAgents classifies User-Agent strings for the access log. The parser
// compiles its full regex set, so it is built on first use.
type userAgents struct {
	once   sync.Once
	parser *uaparser.Parser
}

// classify returns the browser family and a major.minor version, or empty
// strings when ua is empty.
func (u *userAgents) classify(ua string) (family, version string) {
	if ua == "" {
		return "", ""
	}
	u.once.Do(func() {
		u.parser = uaparser.NewFromSaved()
	})
	agent := u.parser.ParseUserAgent(ua)
	version = agent.Major
	if version != "" && agent.Minor != "" {
		version += "." + agent.Minor
	}
	return agent.Family, version
}
