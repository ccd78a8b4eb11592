package wire

// ContentType is an enumerated MIME type for the Content-Type header.
type ContentType uint8

const (
	TextPlain ContentType = iota
	ApplicationJSON
	ApplicationOctetStream
	ApplicationFormURLEncoded
	MultipartFormData
)

func (ct ContentType) String() string {
	switch ct {
	case TextPlain:
		return "text/plain"
	case ApplicationJSON:
		return "application/json"
	case ApplicationOctetStream:
		return "application/octet-stream"
	case ApplicationFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case MultipartFormData:
		return "multipart/form-data"
	default:
		return "application/octet-stream"
	}
}
