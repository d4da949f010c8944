package startgg

import (
	"bytes"
	"encoding/json"
)

// scoresQuery fetches one page of an event's sets with the phase group each
// set belongs to and both slots' participant and placement.
const scoresQuery = `query ScoresQuery($eventSlug: String!, $page: Int!, $perPage: Int!) {
  event(slug: $eventSlug) {
    sets(page: $page, perPage: $perPage, sortType: STANDARD) {
      pageInfo {
        totalPages
      }
      nodes {
        phaseGroup {
          displayIdentifier
          phase {
            name
          }
        }
        slots {
          entrant {
            participants {
              id
              gamerTag
            }
          }
          standing {
            placement
          }
        }
      }
    }
  }
}`

type request struct {
	Query     string    `json:"query"`
	Variables variables `json:"variables"`
}

type variables struct {
	EventSlug string `json:"eventSlug"`
	Page      int    `json:"page"`
	PerPage   int    `json:"perPage"`
}

type response struct {
	Data   *scoresData    `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type scoresData struct {
	Event *struct {
		Sets *setConnection `json:"sets"`
	} `json:"event"`
}

type setConnection struct {
	PageInfo *struct {
		TotalPages *int `json:"totalPages"`
	} `json:"pageInfo"`
	Nodes []*setNode `json:"nodes"`
}

type setNode struct {
	PhaseGroup *struct {
		DisplayIdentifier *string `json:"displayIdentifier"`
		Phase             *struct {
			Name *string `json:"name"`
		} `json:"phase"`
	} `json:"phaseGroup"`
	Slots []*slot `json:"slots"`
}

type slot struct {
	Entrant *struct {
		Participants []*participant `json:"participants"`
	} `json:"entrant"`
	Standing *struct {
		Placement *int `json:"placement"`
	} `json:"standing"`
}

type participant struct {
	ID       *ID     `json:"id"`
	GamerTag *string `json:"gamerTag"`
}

// ID is a start.gg identifier. The API returns the same field either as a
// JSON number or as a string; both decode to the same decimal text.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(b, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}
