package model

// Columns lists the mutable contact columns in the order in which they are written. The insert and
// update statements are derived from this list, so it must stay in sync with the db tags of Fields.
var Columns = []string{"first_name", "last_name", "email", "phone", "birthday"}

// Fields holds everything about a contact that a client may set. An update replaces all of them at
// once.
type Fields struct {
	FirstName string `json:"first_name" db:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name"  db:"last_name"  binding:"required,max=150"`
	Email     string `json:"email"      db:"email"      binding:"required,email,max=255"`
	Phone     string `json:"phone"      db:"phone"      binding:"required,max=64"`
	Birthday  *Date  `json:"birthday"   db:"birthday"   swaggertype:"string" example:"1969-03-02"`
}

// Contact is the data structure for a person that we know.
type Contact struct {
	Id int64 `json:"id" db:"id"`
	Fields
}

// CreateContact is the request body for creating a contact. The birthday may be omitted.
type CreateContact struct {
	Fields
}

// UpdateContact is the request body for replacing a contact. Unlike on creation, the birthday is
// mandatory here.
type UpdateContact struct {
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name"  binding:"required,max=150"`
	Email     string `json:"email"      binding:"required,email,max=255"`
	Phone     string `json:"phone"      binding:"required,max=64"`
	Birthday  *Date  `json:"birthday"   binding:"required" swaggertype:"string" example:"1969-03-02"`
}

// ToFields converts the update request into the full set of mutable fields.
func (u UpdateContact) ToFields() Fields {
	return Fields{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Birthday:  u.Birthday,
	}
}

// Replace overwrites every mutable field of the contact. The id stays untouched.
func (c *Contact) Replace(f Fields) {
	c.Fields = f
}
