// cmd/tools/riskctl/main.go
package main

func main() {
	Execute()
}
