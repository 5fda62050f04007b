/*
Package atomicfile replaces a file as a whole: either the new content is
fully written or the old file stays as it was.

We write to a temporary file in the destination directory and rename it
over the destination in Close(). If Write() or Close() fail, the
temporary file is removed.

	err := atomicfile.WriteFile("db.csv", func(w io.Writer) error {
		_, err := io.WriteString(w, "key1,key2\n")
		return err
	})

Or, for more control:

	f, err := atomicfile.New("db.csv")
	if err != nil {
		return err
	}
	// calling Close() twice is a no-op
	defer f.Close()

	_, err = f.Write(data)
	if err != nil {
		return err
	}
	return f.Close()

To learn more see https://presstige.io/p/atomicfile-22143bf788b542fda2262ca7aee57ae4
*/
package atomicfile
