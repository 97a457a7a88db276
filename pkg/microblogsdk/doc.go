/*
Package microblogsdk is a Go client for the microblog HTTP API.

Use a Client for the public endpoints and to log in:

	client := microblogsdk.NewClient("http://localhost:8080")

	_, err := client.Register(ctx, microblogsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})

	session, err := client.Login(ctx, "alice", "correct horse")

A Session carries the bearer token and covers everything else:

	_ = session.Follow(ctx, "bob")
	_, _ = session.CreatePost(ctx, microblogsdk.CreatePostRequest{Body: "hello", Language: "en"})
	page, _ := session.Timeline(ctx, 1)

Errors returned by the service are *APIError values carrying the HTTP
status and the error code from the response body.
*/
package microblogsdk
