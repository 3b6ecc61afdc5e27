package server

import (
	"encoding/json"
	"net/http"

	"github.com/krystark/portal-gate/credentials"
)

type identityResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	LegacyID    string `json:"legacyId,omitempty"`
}

type legacyResponse struct {
	ExternalID     string   `json:"externalId"`
	RouteAllowList []string `json:"routeAllowList"`
	IsAdmin        bool     `json:"isAdmin"`
}

type sessionResponse struct {
	Phase     string            `json:"phase"`
	Checking  bool              `json:"checking"`
	Finished  bool              `json:"finished"`
	ErrorCode int               `json:"errorCode,omitempty"`
	Identity  *identityResponse `json:"identity,omitempty"`
	Legacy    *legacyResponse   `json:"legacy,omitempty"`
}

// SessionHandler reports the combined gate state.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := s.gate.State()

		res := sessionResponse{
			Phase:     state.Phase.String(),
			Checking:  state.Checking,
			Finished:  state.Finished,
			ErrorCode: state.ErrorCode,
		}
		if state.Identity != nil {
			res.Identity = &identityResponse{
				ID:          state.Identity.ID,
				Email:       state.Identity.Email,
				DisplayName: state.Identity.DisplayName,
				LegacyID:    state.Identity.LegacyID,
			}
		}
		if state.Legacy != nil {
			res.Legacy = &legacyResponse{
				ExternalID:     state.Legacy.ExternalID,
				RouteAllowList: state.Legacy.RouteAllowList,
				IsAdmin:        state.Legacy.IsAdmin,
			}
		}
		s.writeJSON(w, http.StatusOK, res)
	}
}

// NavHandler serves the post-overlay nav snapshot.
func (s *Server) NavHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.nav.Snapshot())
	}
}

// RoutesHandler serves the post-overlay route snapshot.
func (s *Server) RoutesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.routeReg.Snapshot())
	}
}

type tokenRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Remember     bool   `json:"remember"`
}

// TokenHandler stores a credential pair, the API equivalent of a login
// landing in the gate. The write's broadcast triggers a recheck.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.AccessToken == "" {
			http.Error(w, "accessToken is required", http.StatusBadRequest)
			return
		}

		s.store.Set(r.Context(), credentials.TokenPair{
			AccessToken:  req.AccessToken,
			RefreshToken: req.RefreshToken,
		}, req.Remember)
		s.gate.Recheck(r.Context())

		w.WriteHeader(http.StatusNoContent)
	}
}

// LogoutHandler clears every credential tier.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.gate.Logout(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn().Err(err).Msg("encoding response")
	}
}
