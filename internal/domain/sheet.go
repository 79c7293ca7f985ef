package domain

// SlotState is the lifecycle stage of one answer on a player's sheet.
type SlotState int

const (
	Unanswered SlotState = iota
	Drafted
	Submitted
)

func (s SlotState) String() string {
	switch s {
	case Drafted:
		return "drafted"
	case Submitted:
		return "submitted"
	}
	return "unanswered"
}

// MarshalText renders the state as its name in JSON payloads.
func (s SlotState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AnswerSlot is a tagged variant: Unanswered, Drafted(value) or Submitted(value).
type AnswerSlot struct {
	Key   string    `json:"key"`
	State SlotState `json:"state"`
	Value string    `json:"value,omitempty"`
}

// Sheet holds a player's answer slots, one per question plus the optional tiebreaker.
// Slots change only through Select, MarkSubmitted and Reopen.
type Sheet struct {
	GameID   string
	PlayerID string
	order    []string
	slots    map[string]AnswerSlot
}

// NewSheet creates a sheet with every question unanswered. The tiebreaker slot
// is appended when withTiebreaker is set.
func NewSheet(gameID, playerID string, questions []Question, withTiebreaker bool) *Sheet {
	s := &Sheet{
		GameID:   gameID,
		PlayerID: playerID,
		slots:    make(map[string]AnswerSlot, len(questions)+1),
	}
	for _, q := range questions {
		s.order = append(s.order, q.ID)
		s.slots[q.ID] = AnswerSlot{Key: q.ID}
	}
	if withTiebreaker {
		s.order = append(s.order, TiebreakerKey)
		s.slots[TiebreakerKey] = AnswerSlot{Key: TiebreakerKey}
	}
	return s
}

// ReconcileSheet builds a sheet from the authoritative latest answers and the
// player's local drafts. An unsaved draft takes precedence over a stored
// answer; otherwise the stored answer is reported as submitted.
func ReconcileSheet(gameID, playerID string, questions []Question, withTiebreaker bool, latest map[string]Answer, drafts map[string]Draft) *Sheet {
	s := NewSheet(gameID, playerID, questions, withTiebreaker)
	for _, key := range s.order {
		if d, ok := drafts[key]; ok && d.Unsaved && d.Value != "" {
			s.slots[key] = AnswerSlot{Key: key, State: Drafted, Value: d.Value}
			continue
		}
		if a, ok := latest[key]; ok {
			s.slots[key] = AnswerSlot{Key: key, State: Submitted, Value: a.Text}
		}
	}
	return s
}

// Has reports whether key is a slot on this sheet.
func (s *Sheet) Has(key string) bool {
	_, ok := s.slots[key]
	return ok
}

// Slot returns the slot for key.
func (s *Sheet) Slot(key string) (AnswerSlot, bool) {
	slot, ok := s.slots[key]
	return slot, ok
}

// Slots returns the slots in question order, tiebreaker last.
func (s *Sheet) Slots() []AnswerSlot {
	out := make([]AnswerSlot, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.slots[key])
	}
	return out
}

// Select drafts value into the slot. Submitted slots must be reopened first.
func (s *Sheet) Select(key, value string) error {
	slot, ok := s.slots[key]
	if !ok {
		return ErrQuestionNotFound
	}
	if slot.State == Submitted {
		return ErrAnswerLocked
	}
	s.slots[key] = AnswerSlot{Key: key, State: Drafted, Value: value}
	return nil
}

// MarkSubmitted moves a drafted slot to submitted.
func (s *Sheet) MarkSubmitted(key string) error {
	slot, ok := s.slots[key]
	if !ok {
		return ErrQuestionNotFound
	}
	if slot.State != Drafted {
		return ErrNotDrafted
	}
	slot.State = Submitted
	s.slots[key] = slot
	return nil
}

// Reopen turns a submitted slot back into a draft holding the same value.
func (s *Sheet) Reopen(key string) error {
	slot, ok := s.slots[key]
	if !ok {
		return ErrQuestionNotFound
	}
	if slot.State != Submitted {
		return ErrNotSubmitted
	}
	slot.State = Drafted
	s.slots[key] = slot
	return nil
}

// Pending returns the drafted slots in order.
func (s *Sheet) Pending() []AnswerSlot {
	var out []AnswerSlot
	for _, key := range s.order {
		if slot := s.slots[key]; slot.State == Drafted {
			out = append(out, slot)
		}
	}
	return out
}

// QuestionsComplete reports whether every question slot holds a value.
// The tiebreaker slot is optional.
func (s *Sheet) QuestionsComplete() bool {
	for _, key := range s.order {
		if key == TiebreakerKey {
			continue
		}
		if s.slots[key].State == Unanswered {
			return false
		}
	}
	return true
}
