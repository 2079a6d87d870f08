package ast

// ListID names one of a signature's per-buffer match lists.
type ListID int

// Match lists. Each list is inspected against one buffer.
const (
	ListPacket ListID = iota
	ListPayload
	ListURI
	ListHTTPRawURI
	ListHTTPHeader
	ListHTTPRawHeader
	ListHTTPClientBody
	ListHTTPServerBody
	ListHTTPMethod
	ListHTTPCookie
	ListHTTPUserAgent
	ListHTTPHost
	ListHTTPRawHost
	ListHTTPStatMsg
	ListHTTPStatCode
	ListDCEStub
	ListPostMatch

	ListCount
)

var listNames = [ListCount]string{
	ListPacket:         "packet",
	ListPayload:        "payload",
	ListURI:            "http_uri",
	ListHTTPRawURI:     "http_raw_uri",
	ListHTTPHeader:     "http_header",
	ListHTTPRawHeader:  "http_raw_header",
	ListHTTPClientBody: "http_client_body",
	ListHTTPServerBody: "http_server_body",
	ListHTTPMethod:     "http_method",
	ListHTTPCookie:     "http_cookie",
	ListHTTPUserAgent:  "http_user_agent",
	ListHTTPHost:       "http_host",
	ListHTTPRawHost:    "http_raw_host",
	ListHTTPStatMsg:    "http_stat_msg",
	ListHTTPStatCode:   "http_stat_code",
	ListDCEStub:        "dce_stub_data",
	ListPostMatch:      "postmatch",
}

func (l ListID) String() string {
	if l >= 0 && l < ListCount {
		return listNames[l]
	}
	return "unknown"
}

// ListFromName finds a list by its keyword name.
func ListFromName(s string) (ListID, bool) {
	for i, n := range listNames {
		if n == s {
			return ListID(i), true
		}
	}
	return 0, false
}

// IsBuffer is true for lists that are inspected against a byte buffer.
func (l ListID) IsBuffer() bool {
	return l != ListPacket && l != ListPostMatch && l >= 0 && l < ListCount
}

// IsHTTP is true for lists filled by the HTTP parser.
func (l ListID) IsHTTP() bool {
	return l >= ListURI && l <= ListHTTPStatCode
}
