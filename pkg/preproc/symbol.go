// Package preproc evaluates BSL preprocessor conditions (#If Server Then ...)
// to the set of target platforms on which the guarded code is compiled.
package preproc

import (
	"strings"
)

// Symbol is a preprocessor platform symbol.
type Symbol uint8

const (
	Server Symbol = iota
	Client
	ThinClient
	MobileClient
	WebClient
	ExternalConnection
	ManagedThickClient
	OrdinaryThickClient
	MobileStandaloneServer
	MobileAppClient
	MobileAppServer
	NonStandard

	symbolCount = iota
)

var symbolNames = [symbolCount]string{
	Server:                 "SERVER",
	Client:                 "CLIENT",
	ThinClient:             "THIN_CLIENT",
	MobileClient:           "MOBILE_CLIENT",
	WebClient:              "WEB_CLIENT",
	ExternalConnection:     "EXTERNAL_CONNECTION",
	ManagedThickClient:     "MANAGED_THICK_CLIENT",
	OrdinaryThickClient:    "ORDINARY_THICK_CLIENT",
	MobileStandaloneServer: "MOBILE_STANDALONE_SERVER",
	MobileAppClient:        "MOBILE_APP_CLIENT",
	MobileAppServer:        "MOBILE_APP_SERVER",
	NonStandard:            "NON_STANDARD",
}

func (s Symbol) String() string {
	if int(s) < len(symbolNames) {
		return symbolNames[s]
	}
	return "UNKNOWN"
}

// keywords maps lower-cased source keywords, Russian and English, to symbols.
var keywords = map[string]Symbol{
	"сервер":    Server,
	"насервере": Server,
	"server":    Server,
	"atserver":  Server,

	"клиент":    Client,
	"наклиенте": Client,
	"client":    Client,
	"atclient":  Client,

	"тонкийклиент": ThinClient,
	"thinclient":   ThinClient,

	"мобильныйклиент": MobileClient,
	"mobileclient":    MobileClient,

	"вебклиент": WebClient,
	"webclient": WebClient,

	"внешнеесоединение":  ExternalConnection,
	"externalconnection": ExternalConnection,

	"толстыйклиентуправляемоеприложение": ManagedThickClient,
	"thickclientmanagedapplication":      ManagedThickClient,

	"толстыйклиентобычноеприложение": OrdinaryThickClient,
	"thickclientordinaryapplication": OrdinaryThickClient,

	"мобильныйавтономныйсервер": MobileStandaloneServer,
	"mobilestandaloneserver":    MobileStandaloneServer,

	"мобильноеприложениеклиент": MobileAppClient,
	"mobileappclient":           MobileAppClient,

	"мобильноеприложениесервер": MobileAppServer,
	"mobileappserver":           MobileAppServer,
}

// SymbolFor maps a preprocessor keyword as written in source to its symbol.
// Keywords are case-insensitive; anything unrecognised is NonStandard.
func SymbolFor(keyword string) Symbol {
	if s, ok := keywords[strings.ToLower(strings.TrimSpace(keyword))]; ok {
		return s
	}
	return NonStandard
}

// ParseSymbol accepts either a source keyword or a symbol name such as
// THIN_CLIENT.
func ParseSymbol(name string) (Symbol, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range symbolNames {
		if n == upper {
			return Symbol(i), true
		}
	}
	s := SymbolFor(name)
	return s, s != NonStandard
}
