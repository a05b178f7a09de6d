package auth

import (
	"errors"
	"net/http"

	"github.com/inamate/whiteboard/internal/collab"
	"github.com/inamate/whiteboard/internal/typeid"
)

// PlaygroundBoardID is open to anonymous users even when guests are off.
const PlaygroundBoardID = "playground"

var ErrMissingToken = errors.New("missing token")

// BoardAuthenticator admits websocket clients holding a valid token in the
// token query parameter. Without a token a client joins as an anonymous
// guest when allowGuests is set or the board is the playground.
func (s *Service) BoardAuthenticator(allowGuests bool) collab.Authenticator {
	return func(r *http.Request, boardID string) (collab.Identity, error) {
		if token := r.URL.Query().Get("token"); token != "" {
			user, err := s.ValidateToken(token)
			if err != nil {
				return collab.Identity{}, err
			}
			return collab.Identity{UserID: user.ID, DisplayName: user.DisplayName}, nil
		}

		if !allowGuests && boardID != PlaygroundBoardID {
			return collab.Identity{}, ErrMissingToken
		}
		return collab.Identity{UserID: typeid.NewUserID(), DisplayName: "Guest"}, nil
	}
}
