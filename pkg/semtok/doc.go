/*
Package semtok turns WIT tokens into the LSP semantic token stream.

Pipeline:
--------

	  document text
	       |
	       v
	+-------------+    Token{Span, Kind}    +------------+
	| wit.Tokens  | ----------------------> |  Classify  |
	+-------------+                         +------------+
	       |                                      |
	  position.Index                         Category -> TokenType
	       |                                      |
	       +------------------+-------------------+
	                          v
	                   +-------------+
	                   |   Builder   |  delta encoding
	                   +-------------+
	                          |
	                          v
	        [dLine, dStart, length, type, modifiers] ...

Delta encoding:
--------------

Every record is relative to the start of the record before it. When the line
changes, the start column is absolute again:

	token      line:col    dLine  dStart
	package    0:0         0      0
	a:b        0:8         0      8
	world      2:0         2      0
	w          2:6         0      6

Whitespace and unknown characters are classified but never emitted. Tokens
that span several lines (block comments) are cut at the end of their first
line. Tokens whose span no longer fits the document are skipped.
*/
package semtok
