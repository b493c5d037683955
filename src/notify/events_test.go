package notify

import (
	"testing"
	"time"

	"github.com/sauti-platform/sauti/src/api/types"
	"github.com/stretchr/testify/require"
)

func TestStatusChangeMessage(t *testing.T) {
	end := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	bill := types.Bill{
		ID:                   42,
		BillNumber:           "NA-001-2026",
		Title:                "County Boundaries Bill",
		ParticipationEndDate: &end,
	}

	msg := StatusChangeMessage(StatusChanged{
		Bill:      bill,
		OldStatus: types.BillStatusGazetted,
		NewStatus: types.BillStatusOpen,
	})
	require.Equal(t, KindStatusChange, msg.Kind)
	require.Contains(t, msg.Subject, "NA-001-2026")
	require.Contains(t, msg.Body, "open for public participation")
	require.Contains(t, msg.Body, "14 September 2026")
	require.NotNil(t, msg.BillID)
	require.Equal(t, uint64(42), *msg.BillID)

	msg = StatusChangeMessage(StatusChanged{
		Bill:      bill,
		OldStatus: types.BillStatusOpen,
		NewStatus: types.BillStatusClosed,
	})
	require.Contains(t, msg.Subject, "Participation closed")
}

func TestEngagementMessage(t *testing.T) {
	billID := uint64(7)
	eng := types.CitizenEngagement{
		BillID:  &billID,
		Subject: "Your submission on clause 4",
		Message: "Thank you for the detailed proposal.",
	}
	msg := EngagementMessage(eng, "Hon. A. Wanjiku")
	require.Equal(t, KindEngagement, msg.Kind)
	require.Contains(t, msg.Subject, "Hon. A. Wanjiku")
	require.Contains(t, msg.Subject, "Your submission on clause 4")
	require.Equal(t, "Thank you for the detailed proposal.", msg.Body)
	require.Equal(t, &billID, msg.BillID)
}
