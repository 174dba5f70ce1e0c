package signal

import (
	"context"
	"time"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

const verifyTimeout = 3 * time.Second

// handleJoin resolves the display name, from the identity token when one
// is given, and hands the join to the orchestrator.
func (ctl *SignalWSController) handleJoin(sid domain.ConnectionID, conn *WsSignalConn, f inboundFrame) {
	name := f.Name
	switch {
	case f.Token != "" && ctl.Identity != nil:
		ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
		id, err := ctl.Identity.Verify(ctx, f.Token)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join token rejected")
			ctl.sendError(conn, "invalid_token", "token rejected")
			return
		}
		name = id.Name
	case ctl.Options.RequireToken:
		ctl.sendError(conn, "token_required", "join requires a token")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("name", name).Msg("join")
	ctl.Orch.Dispatch(sid, core.Join{DisplayName: name})
}

func (ctl *SignalWSController) sendError(conn *WsSignalConn, code, msg string) {
	if err := conn.TrySend(core.Error{Code: code, Message: msg}); err != nil {
		log.Debug().Err(err).Str("module", "signal").Msg("sendError")
	}
}
