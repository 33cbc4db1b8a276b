package domain

import "time"

// FetchSession represents one server-side data retrieval job. The session id
// is assigned by the network when the fetch is requested; the data becomes
// available some time later and is polled for.
type FetchSession struct {
	SessionID     string
	ConsentHandle string

	RequestedAt time.Time
	RangeFrom   time.Time
	RangeTo     time.Time

	// Fetched marks that the session payload has been retrieved and
	// normalized; Records then holds the canonical result so that repeated
	// fetches of the same session return identical output.
	Fetched bool
	Records []NormalizedRecord
}

func NewFetchSession(sessionID, consentHandle string, rangeFrom, rangeTo time.Time) *FetchSession {
	return &FetchSession{
		SessionID:     sessionID,
		ConsentHandle: consentHandle,
		RequestedAt:   time.Now().UTC(),
		RangeFrom:     rangeFrom,
		RangeTo:       rangeTo,
	}
}
