package run

import "context"

func (s *Server) jumpWorker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.jumpCh:
			s.editor.Jump(ctx, j)
			s.metrics.incJumps()
		}
	}
}
