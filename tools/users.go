package tools

import (
	"context"
	"encoding/json"

	"github.com/vportnov/usermgmt-agent/internal/userapi"
)

type GetUserInput struct {
	UserID int `json:"user_id" jsonschema_description:"Unique user identifier."`
}

type SearchUserInput struct {
	Name    string `json:"name,omitempty" jsonschema_description:"Partial first name match, case-insensitive."`
	Surname string `json:"surname,omitempty" jsonschema_description:"Partial last name match, case-insensitive."`
	Email   string `json:"email,omitempty" jsonschema_description:"Partial email match, e.g. 'gmail' finds all Gmail users."`
	Gender  string `json:"gender,omitempty" jsonschema_description:"Exact gender match: male, female, other, prefer_not_to_say."`
}

type AddUserInput struct {
	Name        string              `json:"name" jsonschema_description:"First name, 2-50 characters."`
	Surname     string              `json:"surname" jsonschema_description:"Last name, 2-50 characters."`
	Email       string              `json:"email" jsonschema_description:"Unique email address."`
	AboutMe     string              `json:"about_me" jsonschema_description:"Biography or description."`
	Phone       string              `json:"phone,omitempty" jsonschema_description:"Phone number, E.164 format preferred."`
	DateOfBirth string              `json:"date_of_birth,omitempty" jsonschema_description:"Birth date in YYYY-MM-DD format."`
	Gender      string              `json:"gender,omitempty" jsonschema_description:"One of male, female, other, prefer_not_to_say."`
	Company     string              `json:"company,omitempty" jsonschema_description:"Company name."`
	Salary      float64             `json:"salary,omitempty" jsonschema_description:"Annual salary in USD."`
	Address     *userapi.Address    `json:"address,omitempty" jsonschema_description:"Complete address: country, city, street, flat_house."`
	CreditCard  *userapi.CreditCard `json:"credit_card,omitempty" jsonschema_description:"Card data: num, cvv, exp_date."`
}

type UpdateUserInput struct {
	UserID      int                 `json:"user_id" jsonschema_description:"ID of the user to update."`
	Name        string              `json:"name,omitempty" jsonschema_description:"New first name."`
	Surname     string              `json:"surname,omitempty" jsonschema_description:"New last name."`
	Email       string              `json:"email,omitempty" jsonschema_description:"New email address."`
	Phone       string              `json:"phone,omitempty" jsonschema_description:"New phone number."`
	DateOfBirth string              `json:"date_of_birth,omitempty" jsonschema_description:"New birth date, YYYY-MM-DD."`
	Gender      string              `json:"gender,omitempty" jsonschema_description:"New gender value."`
	Company     string              `json:"company,omitempty" jsonschema_description:"New company name."`
	Salary      float64             `json:"salary,omitempty" jsonschema_description:"New annual salary in USD."`
	Address     *userapi.Address    `json:"address,omitempty" jsonschema_description:"Replacement address."`
	CreditCard  *userapi.CreditCard `json:"credit_card,omitempty" jsonschema_description:"Replacement card data."`
}

type DeleteUserInput struct {
	UserID int `json:"user_id" jsonschema_description:"Unique user identifier to delete."`
}

// UserTools returns the user-management tool set backed by the given client.
// Only provided fields are sent on update (PATCH semantics at the service).
func UserTools(client *userapi.Client) []LocalTool {
	return []LocalTool{
		{
			Name:        "get_user_by_id",
			Description: "Retrieve a single user by ID. Returns all profile fields.",
			InputSchema: GenerateSchema[GetUserInput](),
			Function: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in GetUserInput
				if err := json.Unmarshal(input, &in); err != nil {
					return "", err
				}
				return client.GetUser(ctx, in.UserID)
			},
		},
		{
			Name: "search_user",
			Description: "Search for users by optional criteria. Name, surname and email match " +
				"partially and case-insensitively; gender matches exactly. Omitted criteria are ignored.",
			InputSchema: GenerateSchema[SearchUserInput](),
			Function: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in SearchUserInput
				if err := json.Unmarshal(input, &in); err != nil {
					return "", err
				}
				return client.SearchUsers(ctx, userapi.SearchQuery{
					Name:    in.Name,
					Surname: in.Surname,
					Email:   in.Email,
					Gender:  in.Gender,
				})
			},
		},
		{
			Name: "add_user",
			Description: "Create a new user. Required: name, surname, email, about_me. " +
				"Optional: phone, date_of_birth, gender, company, salary, address, credit_card.",
			InputSchema: GenerateSchema[AddUserInput](),
			Function: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in AddUserInput
				if err := json.Unmarshal(input, &in); err != nil {
					return "", err
				}
				return client.CreateUser(ctx, userapi.UserCreate{
					Name:        in.Name,
					Surname:     in.Surname,
					Email:       in.Email,
					AboutMe:     in.AboutMe,
					Phone:       in.Phone,
					DateOfBirth: in.DateOfBirth,
					Gender:      in.Gender,
					Company:     in.Company,
					Salary:      in.Salary,
					Address:     in.Address,
					CreditCard:  in.CreditCard,
				})
			},
		},
		{
			Name:        "update_user",
			Description: "Update an existing user by ID. Only the provided fields are changed.",
			InputSchema: GenerateSchema[UpdateUserInput](),
			Function: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in UpdateUserInput
				if err := json.Unmarshal(input, &in); err != nil {
					return "", err
				}
				return client.UpdateUser(ctx, in.UserID, userapi.UserUpdate{
					Name:        in.Name,
					Surname:     in.Surname,
					Email:       in.Email,
					Phone:       in.Phone,
					DateOfBirth: in.DateOfBirth,
					Gender:      in.Gender,
					Company:     in.Company,
					Salary:      in.Salary,
					Address:     in.Address,
					CreditCard:  in.CreditCard,
				})
			},
		},
		{
			Name:        "delete_user",
			Description: "Delete a user by ID.",
			InputSchema: GenerateSchema[DeleteUserInput](),
			Function: func(ctx context.Context, input json.RawMessage) (string, error) {
				var in DeleteUserInput
				if err := json.Unmarshal(input, &in); err != nil {
					return "", err
				}
				return client.DeleteUser(ctx, in.UserID)
			},
		},
	}
}
