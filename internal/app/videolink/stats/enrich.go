package stats

import "github.com/mssola/user_agent"

// Client is the parsed User-Agent stored next to each click.
type Client struct {
	Browser string
	OS      string
	Device  string // desktop | mobile | bot
}

func ParseClient(ua string) Client {
	if ua == "" {
		return Client{Device: "unknown"}
	}
	parsed := user_agent.New(ua)
	name, _ := parsed.Browser()

	device := "desktop"
	switch {
	case parsed.Bot():
		device = "bot"
	case parsed.Mobile():
		device = "mobile"
	}
	return Client{
		Browser: name,
		OS:      parsed.OSInfo().Name,
		Device:  device,
	}
}
