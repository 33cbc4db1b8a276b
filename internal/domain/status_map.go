package domain

import "strings"

// remoteStatusMap translates the aggregator network's consent vocabulary into
// the internal enumeration. PAUSED means the subject suspended sharing without
// revoking, so it stays PENDING.
var remoteStatusMap = map[string]ConsentStatus{
	"ACTIVE":   StatusGranted,
	"PAUSED":   StatusPending,
	"PENDING":  StatusPending,
	"REVOKED":  StatusRevoked,
	"EXPIRED":  StatusExpired,
	"REJECTED": StatusDenied,
}

// StatusFromRemote maps a remote status string onto a ConsentStatus. Unknown
// values fail closed to PENDING so that a vocabulary drift on the network side
// can never grant access by accident.
func StatusFromRemote(remote string) ConsentStatus {
	if s, ok := remoteStatusMap[strings.ToUpper(strings.TrimSpace(remote))]; ok {
		return s
	}
	return StatusPending
}
