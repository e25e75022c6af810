package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"library-desk/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	dataDir         = "data"
	adminInviteCode = "LIB-ADMIN-2025"
)

func main() {
	root := &cobra.Command{
		Use:          "library-desk",
		Short:        "Library desk: accounts, books, and borrowing over a local data directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	accounts, err := library.OpenAccountStore(filepath.Join(dataDir, "accounts"), nil)
	if err != nil {
		return fmt.Errorf("open account store: %w", err)
	}
	defer accounts.Close()

	books, err := library.OpenBookStore(filepath.Join(dataDir, "books"), nil)
	if err != nil {
		return fmt.Errorf("open book store: %w", err)
	}
	defer books.Close()

	a := &app{
		accounts: accounts,
		books:    books,
		in:       bufio.NewScanner(os.Stdin),
	}
	a.signInLoop()
	return nil
}

// app is the interactive shell. It holds no domain state of its own;
// every action goes through the two stores.
type app struct {
	accounts *library.AccountStore
	books    *library.BookStore
	in       *bufio.Scanner
}

// prompt prints a label and reads one trimmed line. The second result
// is false once stdin is closed.
func (a *app) prompt(label string) (string, bool) {
	fmt.Print(label)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

// readPassword reads a password with masking when stdin is a terminal,
// and as a plain line otherwise.
func (a *app) readPassword(label string) (string, bool) {
	fmt.Print(label)
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fmt.Printf("Error reading password: %v\n", err)
			return "", false
		}
		return strings.TrimSpace(string(b)), true
	}
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *app) signInLoop() {
	fmt.Println("Welcome to the Library System!")
	for {
		fmt.Println("\nCommands: login, register, exit")
		cmd, ok := a.prompt("> ")
		if !ok {
			return
		}
		switch cmd {
		case "login":
			a.handleLogin()
		case "register":
			a.handleRegister()
		case "exit":
			fmt.Println("Goodbye!")
			return
		case "":
		default:
			fmt.Println("Unknown command.")
		}
	}
}

func (a *app) handleLogin() {
	username, ok := a.prompt("Username: ")
	if !ok {
		return
	}
	password, ok := a.readPassword("Password: ")
	if !ok {
		return
	}
	if username == "" || password == "" {
		fmt.Println("Please enter both username and password.")
		return
	}

	acc, ok := a.accounts.Authenticate(username, password)
	if !ok {
		fmt.Println("Invalid username or password.")
		return
	}
	sess := library.NewSession(acc, false)
	if acc.IsAdmin() {
		a.adminMenu(sess)
	} else {
		a.userMenu(sess)
	}
}

func (a *app) handleRegister() {
	first, ok := a.prompt("First name: ")
	if !ok {
		return
	}
	last, ok := a.prompt("Last name: ")
	if !ok {
		return
	}
	username, ok := a.prompt("Username: ")
	if !ok {
		return
	}
	password, ok := a.readPassword("Password: ")
	if !ok {
		return
	}
	confirm, ok := a.readPassword("Confirm password: ")
	if !ok {
		return
	}
	accType, ok := a.prompt("Account type (user/admin): ")
	if !ok {
		return
	}
	if accType == "" {
		accType = library.TypeUser
	}

	if first == "" || last == "" || username == "" || password == "" {
		fmt.Println("Please fill out all fields.")
		return
	}
	if password != confirm {
		fmt.Println("Passwords do not match.")
		return
	}
	if len(username) < 3 {
		fmt.Println("Username must be at least 3 characters.")
		return
	}
	if len(password) < 4 {
		fmt.Println("Password must be at least 4 characters.")
		return
	}
	if a.accounts.Exists(username) {
		fmt.Println("That username is already taken.")
		return
	}
	if accType != library.TypeUser && accType != library.TypeAdmin {
		fmt.Println("Account type must be user or admin.")
		return
	}
	if accType == library.TypeAdmin {
		code, ok := a.readPassword("Admin code: ")
		if !ok {
			return
		}
		if code != adminInviteCode {
			fmt.Println("Invalid admin code.")
			return
		}
	}

	if err := a.accounts.Create(username, password, first, last, accType); err != nil {
		fmt.Printf("Could not create account: %v\n", err)
		return
	}
	fmt.Println("Account created! You can sign in now.")
}

// ------------------ Admin menus ------------------

func (a *app) adminMenu(sess library.Session) {
	fmt.Printf("\nSigned in as %s (admin).\n", sess.Account.Username)
	for {
		fmt.Println("\nAdmin commands: list users, search users, add user, edit user, remove user, impersonate, books, logout")
		cmd, ok := a.prompt("admin> ")
		if !ok {
			return
		}
		switch cmd {
		case "list users":
			a.handleListUsers()
		case "search users":
			a.handleSearchUsers()
		case "add user":
			a.handleAddUser()
		case "edit user":
			a.handleEditUser(sess)
		case "remove user":
			a.handleRemoveUser(sess)
		case "impersonate":
			a.handleImpersonate()
		case "books":
			a.booksMenu()
		case "logout":
			return
		case "":
		default:
			fmt.Println("Unknown command.")
		}
	}
}

func (a *app) handleListUsers() {
	list := a.accounts.ListAll()
	if len(list) == 0 {
		fmt.Println("No accounts.")
		return
	}
	a.printUserTable(list)
}

// handleSearchUsers filters the user listing by a case-insensitive
// substring of the username or name fields.
func (a *app) handleSearchUsers() {
	query, ok := a.prompt("Search users: ")
	if !ok {
		return
	}
	var matches []library.Account
	for _, acc := range a.accounts.ListAll() {
		if accountMatches(acc, query) {
			matches = append(matches, acc)
		}
	}
	if len(matches) == 0 {
		fmt.Println("No matching accounts.")
		return
	}
	a.printUserTable(matches)
}

func (a *app) printUserTable(list []library.Account) {
	fmt.Printf("%-18s %-14s %-14s %-7s %-20s %-20s\n",
		"Username", "First Name", "Last Name", "Type", "Created", "Last Login")
	fmt.Println(strings.Repeat("-", 95))
	for _, acc := range list {
		fmt.Printf("%-18s %-14s %-14s %-7s %-20s %-20s\n",
			truncate(acc.Username, 18),
			truncate(acc.FirstName, 14),
			truncate(acc.LastName, 14),
			acc.Type,
			acc.CreatedAt,
			acc.LastLoginAt)
	}
}

func (a *app) handleAddUser() {
	first, ok := a.prompt("First name: ")
	if !ok {
		return
	}
	last, ok := a.prompt("Last name: ")
	if !ok {
		return
	}
	username, ok := a.prompt("Username: ")
	if !ok {
		return
	}
	password, ok := a.prompt("Password: ")
	if !ok {
		return
	}
	if first == "" || last == "" || username == "" || password == "" {
		fmt.Println("Fill out first/last/username/password.")
		return
	}
	if err := a.accounts.Create(username, password, first, last, library.TypeUser); err != nil {
		fmt.Printf("Failed to add user: %v\n", err)
		return
	}
	fmt.Printf("Added user %q.\n", username)
}

// guardAdminEdit blocks changes to admin accounts other than the
// signed-in admin's own.
func guardAdminEdit(sess library.Session, target library.Account) bool {
	return !target.IsAdmin() || strings.EqualFold(target.Username, sess.Account.Username)
}

func (a *app) handleEditUser(sess library.Session) {
	username, ok := a.prompt("Username to edit: ")
	if !ok {
		return
	}
	target, found := a.accounts.FindByUsername(username)
	if !found {
		fmt.Println("No such account.")
		return
	}
	if !guardAdminEdit(sess, target) {
		fmt.Println("You cannot modify another admin account.")
		return
	}

	newUsername, ok := a.prompt(fmt.Sprintf("New username [%s]: ", target.Username))
	if !ok {
		return
	}
	if newUsername == "" {
		newUsername = target.Username
	}
	password, ok := a.prompt("New password (blank to keep): ")
	if !ok {
		return
	}
	if password == "" {
		password = target.Password
	}
	first, ok := a.prompt(fmt.Sprintf("First name [%s]: ", target.FirstName))
	if !ok {
		return
	}
	if first == "" {
		first = target.FirstName
	}
	last, ok := a.prompt(fmt.Sprintf("Last name [%s]: ", target.LastName))
	if !ok {
		return
	}
	if last == "" {
		last = target.LastName
	}

	if err := a.accounts.Update(target.Username, newUsername, password, first, last, target.Type); err != nil {
		fmt.Printf("Save failed: %v\n", err)
		return
	}
	fmt.Println("Saved.")
}

func (a *app) handleRemoveUser(sess library.Session) {
	username, ok := a.prompt("Username to remove: ")
	if !ok {
		return
	}
	target, found := a.accounts.FindByUsername(username)
	if !found {
		fmt.Println("No such account.")
		return
	}
	if !guardAdminEdit(sess, target) {
		fmt.Println("You cannot delete another admin account.")
		return
	}
	confirm, ok := a.prompt(fmt.Sprintf("Delete account %q? (yes/no): ", target.Username))
	if !ok || confirm != "yes" {
		return
	}
	if err := a.accounts.Delete(target.Username); err != nil {
		fmt.Printf("Delete failed: %v\n", err)
		return
	}
	fmt.Println("Deleted.")
}

func (a *app) handleImpersonate() {
	username, ok := a.prompt("Username to impersonate: ")
	if !ok {
		return
	}
	target, found := a.accounts.FindByUsername(username)
	if !found {
		fmt.Println("No such account.")
		return
	}
	if target.IsAdmin() {
		fmt.Println("You cannot sign in as an admin from here.")
		return
	}
	// Impersonation is an ordinary session for the target user; no
	// password required, and leaving it returns to the admin menu.
	a.userMenu(library.NewSession(target, true))
}

func (a *app) booksMenu() {
	for {
		fmt.Println("\nBook commands: list, add, stock, remove, back")
		cmd, ok := a.prompt("books> ")
		if !ok {
			return
		}
		switch cmd {
		case "list":
			a.handleListBooks()
		case "add":
			a.handleAddBook()
		case "stock":
			a.handleSetStock()
		case "remove":
			a.handleRemoveBook()
		case "back":
			return
		case "":
		default:
			fmt.Println("Unknown command.")
		}
	}
}

func (a *app) handleListBooks() {
	books := a.books.ListAll()
	if len(books) == 0 {
		fmt.Println("No books in library.")
		return
	}
	fmt.Printf("%-5s %-32s %-24s %-6s %-10s %s\n", "ID", "Title", "Author", "Stock", "Status", "Borrowers")
	fmt.Println(strings.Repeat("-", 90))
	for _, b := range books {
		status := "available"
		if !b.Available() {
			status = "out"
		}
		fmt.Printf("%-5d %-32s %-24s %-6d %-10s %d\n",
			b.ID, truncate(b.Title, 32), truncate(b.Author, 24), b.Stock, status, len(b.Borrowers))
	}
}

func (a *app) handleAddBook() {
	title, ok := a.prompt("Title: ")
	if !ok {
		return
	}
	author, ok := a.prompt("Author: ")
	if !ok {
		return
	}
	if title == "" || author == "" {
		fmt.Println("Enter title and author.")
		return
	}
	stock, ok := a.promptInt("Stock: ")
	if !ok {
		return
	}
	b, err := a.books.Add(title, author, stock)
	if err != nil {
		fmt.Printf("Failed to add book: %v\n", err)
		return
	}
	fmt.Printf("Added book ID %d.\n", b.ID)
}

func (a *app) handleSetStock() {
	id, ok := a.promptInt("Book ID: ")
	if !ok {
		return
	}
	stock, ok := a.promptInt("New stock: ")
	if !ok {
		return
	}
	if err := a.books.SetStock(id, stock); err != nil {
		fmt.Printf("Failed to update stock: %v\n", err)
		return
	}
	fmt.Println("Stock updated.")
}

func (a *app) handleRemoveBook() {
	id, ok := a.promptInt("Book ID: ")
	if !ok {
		return
	}
	confirm, ok := a.prompt(fmt.Sprintf("Delete book ID %d? (yes/no): ", id))
	if !ok || confirm != "yes" {
		return
	}
	if err := a.books.Remove(id); err != nil {
		fmt.Printf("Delete failed: %v\n", err)
		return
	}
	fmt.Println("Deleted.")
}

// ------------------ User menu ------------------

func (a *app) userMenu(sess library.Session) {
	who := sess.Account.Username
	if sess.Impersonated {
		fmt.Printf("\nViewing as %s (impersonated).\n", who)
	} else {
		fmt.Printf("\nSigned in as %s.\n", who)
	}
	for {
		fmt.Println("\nCommands: mine, available, search, borrow, return, password, logout")
		cmd, ok := a.prompt(who + "> ")
		if !ok {
			return
		}
		switch cmd {
		case "mine":
			a.handleMyBooks(sess)
		case "available":
			a.handleAvailableBooks()
		case "search":
			a.handleSearchAvailable()
		case "borrow":
			a.handleBorrow(sess)
		case "return":
			a.handleReturn(sess)
		case "password":
			a.handleChangePassword(sess)
		case "logout":
			return
		case "":
		default:
			fmt.Println("Unknown command.")
		}
	}
}

func (a *app) handleMyBooks(sess library.Session) {
	mine := a.books.ListBorrowedBy(sess.Account.Username)
	if len(mine) == 0 {
		fmt.Println("You have no borrowed books.")
		return
	}
	key := strings.ToLower(sess.Account.Username)
	fmt.Printf("%-5s %-32s %-24s %s\n", "ID", "Title", "Author", "Borrowed At")
	fmt.Println(strings.Repeat("-", 85))
	for _, b := range mine {
		fmt.Printf("%-5d %-32s %-24s %s\n",
			b.ID, truncate(b.Title, 32), truncate(b.Author, 24), b.Borrowers[key])
	}
}

func (a *app) handleAvailableBooks() {
	books := a.books.ListAvailable()
	if len(books) == 0 {
		fmt.Println("No books available right now.")
		return
	}
	a.printAvailableTable(books)
}

// handleSearchAvailable filters the available-books listing by a
// case-insensitive substring of the title or author.
func (a *app) handleSearchAvailable() {
	query, ok := a.prompt("Search available books: ")
	if !ok {
		return
	}
	var matches []library.Book
	for _, b := range a.books.ListAvailable() {
		if bookMatches(b, query) {
			matches = append(matches, b)
		}
	}
	if len(matches) == 0 {
		fmt.Println("No matching books.")
		return
	}
	a.printAvailableTable(matches)
}

func (a *app) printAvailableTable(books []library.Book) {
	fmt.Printf("%-5s %-32s %-24s %s\n", "ID", "Title", "Author", "Stock")
	fmt.Println(strings.Repeat("-", 70))
	for _, b := range books {
		fmt.Printf("%-5d %-32s %-24s %d\n", b.ID, truncate(b.Title, 32), truncate(b.Author, 24), b.Stock)
	}
}

func (a *app) handleBorrow(sess library.Session) {
	id, ok := a.promptInt("Book ID: ")
	if !ok {
		return
	}
	switch a.books.Borrow(id, sess.Account.Username) {
	case library.BorrowOK:
		fmt.Println("Borrowed successfully.")
	case library.BorrowLimitReached:
		fmt.Printf("Limit reached: you can borrow up to %d books.\n", library.BorrowLimit)
	case library.BorrowAlreadyBorrowed:
		fmt.Println("You already borrowed this book.")
	default:
		fmt.Println("Book is not available.")
	}
}

func (a *app) handleReturn(sess library.Session) {
	id, ok := a.promptInt("Book ID: ")
	if !ok {
		return
	}
	if err := a.books.Return(id, sess.Account.Username); err != nil {
		fmt.Printf("Return failed: %v\n", err)
		return
	}
	fmt.Println("Returned.")
}

func (a *app) handleChangePassword(sess library.Session) {
	if sess.Impersonated {
		fmt.Println("Password change is disabled while impersonating.")
		return
	}
	current, ok := a.readPassword("Current password: ")
	if !ok {
		return
	}
	newPw, ok := a.readPassword("New password: ")
	if !ok {
		return
	}
	confirm, ok := a.readPassword("Confirm new password: ")
	if !ok {
		return
	}
	if len(newPw) < 4 {
		fmt.Println("Password must be at least 4 characters.")
		return
	}
	if newPw != confirm {
		fmt.Println("New passwords do not match.")
		return
	}
	if err := a.accounts.ChangePassword(sess.Account.Username, current, newPw); err != nil {
		fmt.Printf("Password change failed: %v\n", err)
		return
	}
	fmt.Println("Password updated.")
}

// ------------------ Utilities ------------------

func (a *app) promptInt(label string) (int, bool) {
	text, ok := a.prompt(label)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		fmt.Printf("Invalid number: %s\n", text)
		return 0, false
	}
	return n, true
}

func truncate(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func accountMatches(acc library.Account, query string) bool {
	return containsFold(acc.Username, query) ||
		containsFold(acc.FirstName, query) ||
		containsFold(acc.LastName, query)
}

func bookMatches(b library.Book, query string) bool {
	return containsFold(b.Title, query) || containsFold(b.Author, query)
}
