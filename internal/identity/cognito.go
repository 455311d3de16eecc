// Package identity wraps the external identity provider. User pools,
// password policy and token issuance live there; this client only creates
// identities and reads their claims.
package identity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/haulbase/haulbase/internal/apperr"
	"github.com/haulbase/haulbase/internal/models"
)

// CognitoAPI is the subset of the Cognito client the provider uses.
type CognitoAPI interface {
	AdminCreateUser(ctx context.Context, params *cognitoidentityprovider.AdminCreateUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error)
	AdminGetUser(ctx context.Context, params *cognitoidentityprovider.AdminGetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminGetUserOutput, error)
}

var _ CognitoAPI = (*cognitoidentityprovider.Client)(nil)

// Identity is the provider's view of a user: the claims it vouches for.
type Identity struct {
	ID        string
	Email     string
	Name      string
	Role      models.Role
	CarrierID string
}

// Provider creates identities and reads their claims.
type Provider interface {
	CreateUser(ctx context.Context, email, name string, role models.Role) (string, error)
	GetUser(ctx context.Context, userID string) (*Identity, error)
}

// CognitoProvider implements Provider against a Cognito user pool.
type CognitoProvider struct {
	Client     CognitoAPI
	UserPoolID string
}

// Connect builds a Cognito-backed provider.
func Connect(ctx context.Context, region, userPoolID string) (*CognitoProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &CognitoProvider{
		Client:     cognitoidentityprovider.NewFromConfig(cfg),
		UserPoolID: userPoolID,
	}, nil
}

// CreateUser registers a new identity and returns its id. The provider
// sends no invitation; placeholder users are activated out of band.
func (p *CognitoProvider) CreateUser(ctx context.Context, email, name string, role models.Role) (string, error) {
	out, err := p.Client.AdminCreateUser(ctx, &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId:    aws.String(p.UserPoolID),
		Username:      aws.String(email),
		MessageAction: types.MessageActionTypeSuppress,
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(name)},
			{Name: aws.String("custom:role"), Value: aws.String(string(role))},
		},
	})
	if err != nil {
		return "", apperr.Wrap(err, "creating identity for %s", email)
	}
	for _, attr := range out.User.Attributes {
		if aws.ToString(attr.Name) == "sub" {
			return aws.ToString(attr.Value), nil
		}
	}
	return aws.ToString(out.User.Username), nil
}

// GetUser reads an identity's claims by id.
func (p *CognitoProvider) GetUser(ctx context.Context, userID string) (*Identity, error) {
	out, err := p.Client.AdminGetUser(ctx, &cognitoidentityprovider.AdminGetUserInput{
		UserPoolId: aws.String(p.UserPoolID),
		Username:   aws.String(userID),
	})
	if err != nil {
		return nil, apperr.Wrap(err, "looking up identity %s", userID)
	}
	id := &Identity{ID: aws.ToString(out.Username)}
	for _, attr := range out.UserAttributes {
		switch aws.ToString(attr.Name) {
		case "sub":
			id.ID = aws.ToString(attr.Value)
		case "email":
			id.Email = aws.ToString(attr.Value)
		case "name":
			id.Name = aws.ToString(attr.Value)
		case "custom:role":
			id.Role = models.Role(aws.ToString(attr.Value))
		case "custom:carrier_id":
			id.CarrierID = aws.ToString(attr.Value)
		}
	}
	return id, nil
}
