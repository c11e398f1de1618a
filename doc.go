// Package forum is the backend for a small discussion board: accounts,
// categorized posts, threaded replies, image attachments, and admin
// moderation.
//
// Accounts and sessions:
//   - Passwords are stored as bcrypt hashes. Login exchanges credentials for
//     a signed JWT carrying a snapshot of the identity (id, email, admin and
//     ban flags). The snapshot is what the middleware trusts; a ban applied
//     after issuance takes effect when the token expires.
//   - The account whose email matches the configured admin address becomes
//     the administrator at registration time.
//
// Content:
//   - Posts belong to a category and an author, replies belong to a post.
//     Feeds are ordered at the store, newest posts first, oldest replies
//     first. Deleting a post removes its replies with it.
//
// HTTP surface:
//   - APIController owns the JSON routes and the exact error contract.
//     middleware/authware gates protected routes on the bearer token and the
//     admin claim. Image uploads are handled by fiber-native handlers in
//     uploads.go and served statically.
package forum
