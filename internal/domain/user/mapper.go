package user

// ToModel converts a stored entity into its external form. The password is
// never copied out.
func ToModel(e *Entity) *User {
	if e == nil {
		return nil
	}
	return &User{
		ID:          e.ID,
		Username:    e.Username,
		Email:       e.Email,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		PhoneNumber: e.PhoneNumber,
		Active:      e.Active,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ToModels converts a slice of entities, preserving order.
func ToModels(entities []Entity) []User {
	out := make([]User, 0, len(entities))
	for i := range entities {
		out = append(out, *ToModel(&entities[i]))
	}
	return out
}

// ToEntity allocates a new entity populated from m.
func ToEntity(m *User) *Entity {
	if m == nil {
		return nil
	}
	e := &Entity{}
	UpdateEntity(e, m)
	return e
}

// UpdateEntity copies m onto e. Every field is overwritten except the
// password, which is only replaced when m supplies a non-empty value.
func UpdateEntity(e *Entity, m *User) {
	if e == nil || m == nil {
		return
	}
	e.Username = m.Username
	e.Email = m.Email
	if hasPassword(m) {
		e.Password = *m.Password
	}
	e.FirstName = m.FirstName
	e.LastName = m.LastName
	e.PhoneNumber = m.PhoneNumber
	e.Active = m.Active
}

func hasPassword(m *User) bool {
	return m.Password != nil && *m.Password != ""
}
