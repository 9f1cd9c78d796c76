package migration

import (
	apikeydomain "github.com/smallbiznis/cafelink/internal/apikey/domain"
	attributiondomain "github.com/smallbiznis/cafelink/internal/attribution/domain"
	auditdomain "github.com/smallbiznis/cafelink/internal/auditchain/domain"
	cafedomain "github.com/smallbiznis/cafelink/internal/cafe/domain"
	extpostdomain "github.com/smallbiznis/cafelink/internal/extpost/domain"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	payoutdomain "github.com/smallbiznis/cafelink/internal/payout/domain"
	referraldomain "github.com/smallbiznis/cafelink/internal/referral/domain"
)

// Models lists every persisted type for gorm AutoMigrate on non-postgres
// installs.
func Models() []interface{} {
	return []interface{}{
		&partnerdomain.Partner{},
		&cafedomain.Cafe{},
		&referraldomain.Link{},
		&attributiondomain.Conversion{},
		&attributiondomain.ClickFingerprint{},
		&payoutdomain.Entry{},
		&auditdomain.Snapshot{},
		&apikeydomain.APIKey{},
		&extpostdomain.ExternalPost{},
	}
}
