package worker

import (
	"github.com/ticketdesk/transcript-ledger/internal/service"
)

// StartHistoryWorker registers the decision history handlers.
func StartHistoryWorker(historyService *service.HistoryService) {
	if historyService == nil {
		return
	}
	historyService.RegisterHandlers()
}
